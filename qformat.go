package vad

// qformat.go 给定点运算的寄存器标注Q域
//
// 判决路径里几乎每个整数都隐含一个Q格式（小数点位置），移位量随着
// 乘法、除法而变化。把格式编码进类型后，跨Q域运算必须经过下面的
// 显式转换函数，域不匹配在编译期就会报错，而不是等某次移位错误后
// 才在运行时露出来。这些类型只是underlying int16/int32的别名：运算
// 和产生的机器码与直接操作裸整数完全相同。
//
// 命名约定：QN表示小数点右侧有N位，即类型为QN的值v代表v·2^-N。

// Q4 是特征向量（频带对数能量）使用的定点格式，n=4
type Q4 int16

// Q7 是高斯均值/标准差使用的定点格式，n=7
type Q7 int16

// Q10 是高斯概率倒标准差及其平方根中间量使用的格式，n=10
type Q10 int16

// Q10Acc 与Q10同域，但保留32位宽度，供比较/移位前的累加寄存器使用
type Q10Acc int32

// Q11 是高斯概率delta输出（供模型在线更新使用）的格式，n=11
type Q11 int16

// Q14 是invStd平方、以及条件概率向量使用的格式，n=14
type Q14 int16

// Q20 是高斯概率密度本身的返回格式，n=20 (= Q10 * Q10)
type Q20 int32

// shiftUpQ4ToQ7 把Q4格式的值左移到Q7（input << 3）
func shiftUpQ4ToQ7(x Q4) Q7 {
	return Q7(x) << 3
}

// invertToQ10 计算 1/std，std以Q7给出，结果为Q10
//
// 131072 = 1 以 Q17 表示；std>>1 用于四舍五入而非截断
// Q域：Q17 / Q7 = Q10
func invertToQ10(std Q7) Q10 {
	return Q10(divRound32By16(131072+int32(std>>1), int16(std)))
}

// squareToQ14 计算 (1/std)^2，从Q10平方到Q14
//
// 先把Q10降到Q8（舍弃2位精度）再平方，避免中间结果溢出int16
// Q域：(Q8 * Q8) >> 2 = Q14
func squareToQ14(invStd Q10) Q14 {
	q8 := int32(invStd >> 2)
	return Q14((q8 * q8) >> 2)
}

// deltaQ11 计算 invStd2·diff，供调用方写回噪声/语音模型的在线更新
// Q域：(Q14 * Q7) >> 10 = Q11
func deltaQ11(invStd2 Q14, diff Q7) Q11 {
	return Q11((int32(invStd2) * int32(diff)) >> 10)
}

// expArgQ10 计算指数项 delta·diff，返回宽累加器避免与kCompVar比较前溢出
// Q域：(Q11 * Q7) >> 9 = Q10
func expArgQ10(delta Q11, diff Q7) Q10Acc {
	return Q10Acc((int32(delta) * int32(diff)) >> 9)
}
