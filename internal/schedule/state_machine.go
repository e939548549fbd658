package schedule

// AllowTransition 定义排班状态机的允许流转关系。
// 与维保单同构：scheduled -> active -> completed，单向前进。
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
