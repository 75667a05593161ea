package model

// AnswerSet 某道题已选选项的集合。
// JSON 中表现为保序数组，但所有写入都经过集合语义的方法，
// 保证不出现重复元素，Toggle 两次等价于没操作。
type AnswerSet []string

func (s AnswerSet) Has(option string) bool {
	for _, v := range s {
		if v == option {
			return true
		}
	}
	return false
}

// Add 仅在不存在时追加
func (s AnswerSet) Add(option string) AnswerSet {
	if s.Has(option) {
		return s
	}
	return append(s, option)
}

// Remove 删除所有同名项，容忍历史脏数据中的重复
func (s AnswerSet) Remove(option string) AnswerSet {
	out := s[:0]
	for _, v := range s {
		if v != option {
			out = append(out, v)
		}
	}
	return out
}

// Toggle 多选语义：存在则移除，不存在则加入
func (s AnswerSet) Toggle(option string) AnswerSet {
	if s.Has(option) {
		return s.Remove(option)
	}
	return append(s, option)
}
