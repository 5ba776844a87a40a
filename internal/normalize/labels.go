package normalize

import "fmt"

// Canonical 对外暴露的情绪分类
type Canonical string

const (
	Happiness Canonical = "happiness"
	Sadness   Canonical = "sadness"
	Neutral   Canonical = "neutral"
	Angry     Canonical = "angry"
	Other     Canonical = "other"
)

// Canonicals 全部对外情绪分类
var Canonicals = []Canonical{Happiness, Sadness, Neutral, Angry, Other}

// Table 模型原始标签到对外分类的映射
type Table map[string]Canonical

const (
	TableUpper = "upper"
	TableLower = "lower"
	TableAny   = "any"
)

var (
	// UpperTable 模型输出标签里的大写情绪标记
	UpperTable = Table{
		"HAPPY":       Happiness,
		"SAD":         Sadness,
		"NEUTRAL":     Neutral,
		"ANGRY":       Angry,
		"EMO_UNKNOWN": Other,
	}
	// LowerTable emotion_probs 里的小写标签
	LowerTable = Table{
		"happy":   Happiness,
		"sad":     Sadness,
		"neutral": Neutral,
		"angry":   Angry,
		"unk":     Other,
	}
)

// LookupTable 按配置名取映射表，any 为两套标签的并集
func LookupTable(name string) (Table, error) {
	switch name {
	case TableUpper:
		return UpperTable, nil
	case TableLower:
		return LowerTable, nil
	case TableAny, "":
		t := make(Table, len(UpperTable)+len(LowerTable))
		for k, v := range UpperTable {
			t[k] = v
		}
		for k, v := range LowerTable {
			t[k] = v
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unknown label table %q", name)
	}
}

// UnknownLabelError 原始标签在当前映射表中不存在
type UnknownLabelError struct {
	Label string
}

func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("unmapped emotion label %q", e.Label)
}

// DuplicateLabelError 两个原始标签映射到同一分类
type DuplicateLabelError struct {
	Canonical Canonical
	Labels    [2]string
}

func (e *DuplicateLabelError) Error() string {
	return fmt.Sprintf("emotion labels %q and %q both map to %s", e.Labels[0], e.Labels[1], e.Canonical)
}

func sortedPair(a, b string) [2]string {
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}

func (t Table) lookup(label string) (Canonical, error) {
	c, ok := t[label]
	if !ok {
		return "", &UnknownLabelError{Label: label}
	}
	return c, nil
}
