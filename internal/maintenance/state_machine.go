package maintenance

// AllowTransition 定义维保单状态机的允许流转关系。
// 只能单向前进：scheduled -> active -> completed，终态不再流转。
var AllowTransition = map[Status][]Status{
	StatusScheduled: {StatusActive},
	StatusActive:    {StatusCompleted},
	StatusCompleted: {},
}

// CanTransition 判断 from -> to 是否是一个允许的状态流转。
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	allowed, ok := AllowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}
