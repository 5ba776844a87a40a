// Package normalize turns raw SenseVoice output into the public analysis result.
package normalize

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"audioai/pkg/util"
)

const (
	// TerminatorNoITN 关闭 ITN 时模型在标签后输出的标记
	TerminatorNoITN = "<|woitn|>"
	// TerminatorITN 开启 ITN 时的标记
	TerminatorITN = "<|withitn|>"
)

var ErrMissingTerminator = errors.New("tag string has no terminator marker")

// TagArityError 标签段拆分后不是恰好三个 token
type TagArityError struct {
	Got     int
	Segment string
}

func (e *TagArityError) Error() string {
	return fmt.Sprintf("expected 3 tags (language|emotion|event), got %d in %q", e.Got, e.Segment)
}

// MaxPrecision 超过后 math.Pow10 的乘积不再精确
const MaxPrecision = 15

type ScoreUnit string

const (
	UnitFraction ScoreUnit = "fraction"
	UnitPercent  ScoreUnit = "percent"
)

type Options struct {
	Terminator string
	TagTable   Table // 情绪标签使用的映射
	ProbTable  Table // emotion_probs 使用的映射
	Unit       ScoreUnit
	Precision  int // 保留小数位，<0 不取整，最大 MaxPrecision
}

func DefaultOptions() Options {
	tagTable, _ := LookupTable(TableAny)
	return Options{
		Terminator: TerminatorNoITN,
		TagTable:   tagTable,
		ProbTable:  LowerTable,
		Unit:       UnitFraction,
		Precision:  -1,
	}
}

type Tags struct {
	Language string
	Emotion  string
	Event    string
}

type Result struct {
	Emotion       Canonical             `json:"emotion"`
	EmotionScores map[Canonical]float64 `json:"emotion_scores"`
	Language      string                `json:"language"`
	Event         string                `json:"event"`
	Text          string                `json:"text"`
}

// ParseTagString 解析 "<|en|><|HAPPY|><|Speech|><|woitn|>..." 前缀
func ParseTagString(text, terminator string) (Tags, error) {
	if terminator == "" {
		terminator = TerminatorNoITN
	}
	head, _, found := strings.Cut(text, terminator)
	if !found {
		return Tags{}, ErrMissingTerminator
	}

	stripped := strings.NewReplacer("<", "", ">", "").Replace(head)
	var tokens []string
	for _, tok := range strings.Split(stripped, "|") {
		if tok = strings.TrimSpace(tok); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) != 3 {
		return Tags{}, &TagArityError{Got: len(tokens), Segment: head}
	}
	return Tags{Language: tokens[0], Emotion: tokens[1], Event: tokens[2]}, nil
}

func (o Options) MapEmotionTag(tag string) (Canonical, error) {
	return o.TagTable.lookup(tag)
}

// MapEmotionScores 每个原始标签对应一个分类，两个标签落到同一分类时报错
func (o Options) MapEmotionScores(raw map[string]float64) (map[Canonical]float64, error) {
	scores := make(map[Canonical]float64, len(raw))
	labels := make(map[Canonical]string, len(raw))
	for label, p := range raw {
		c, err := o.ProbTable.lookup(label)
		if err != nil {
			return nil, err
		}
		if prev, ok := labels[c]; ok {
			return nil, &DuplicateLabelError{Canonical: c, Labels: sortedPair(prev, label)}
		}
		labels[c] = label
		scores[c] = o.scale(p)
	}
	return scores, nil
}

func (o Options) scale(p float64) float64 {
	if o.Unit == UnitPercent {
		p *= 100
	}
	if o.Precision < 0 {
		return p
	}
	pow := math.Pow10(o.Precision)
	return math.Round(p*pow) / pow
}

// Normalize 组合标签解析、情绪映射和分数换算
func Normalize(text string, probs map[string]float64, opts Options) (*Result, error) {
	tags, err := ParseTagString(text, opts.terminator())
	if err != nil {
		return nil, err
	}
	emotion, err := opts.MapEmotionTag(tags.Emotion)
	if err != nil {
		return nil, err
	}
	scores, err := opts.MapEmotionScores(probs)
	if err != nil {
		return nil, err
	}

	_, transcript, _ := strings.Cut(text, opts.terminator())
	return &Result{
		Emotion:       emotion,
		EmotionScores: scores,
		Language:      tags.Language,
		Event:         tags.Event,
		Text:          util.CleanTranscript(transcript),
	}, nil
}

func (o Options) terminator() string {
	if o.Terminator == "" {
		return TerminatorNoITN
	}
	return o.Terminator
}
