package reconcile

// Update 一条待持久化的部分字段更新。
// Kind 取各模型包的表名常量（vehicles / maintenance_orders / vehicle_schedules），
// Fields 的 value 为 nil 时表示将该列写为 NULL。
type Update struct {
	Kind   string         `json:"kind"`
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
	Reason string         `json:"reason"`
}

// AppliedUpdate 一条已尝试持久化的更新及其结果。
// 无论成败都会出现在对账报告里，便于调用方审计部分失败。
type AppliedUpdate struct {
	Update
	Error string `json:"error,omitempty"`
}

// OK 该条更新是否持久化成功。
func (a AppliedUpdate) OK() bool { return a.Error == "" }

// MergeUpdates 把同一目标（kind, id）的多条更新合并成一条：
// 后写入的字段覆盖先写入的（按计算顺序 last-write-wins），
// 每个目标每轮只落一次库。输出保持目标首次出现的顺序。
func MergeUpdates(updates []Update) []Update {
	if len(updates) <= 1 {
		return updates
	}

	type key struct{ kind, id string }
	index := make(map[key]int, len(updates))
	merged := make([]Update, 0, len(updates))

	for _, u := range updates {
		k := key{u.Kind, u.ID}
		i, ok := index[k]
		if !ok {
			cp := Update{Kind: u.Kind, ID: u.ID, Reason: u.Reason, Fields: make(map[string]any, len(u.Fields))}
			for f, v := range u.Fields {
				cp.Fields[f] = v
			}
			index[k] = len(merged)
			merged = append(merged, cp)
			continue
		}
		for f, v := range u.Fields {
			merged[i].Fields[f] = v
		}
		if u.Reason != "" && u.Reason != merged[i].Reason {
			if merged[i].Reason == "" {
				merged[i].Reason = u.Reason
			} else {
				merged[i].Reason = merged[i].Reason + "; " + u.Reason
			}
		}
	}
	return merged
}
