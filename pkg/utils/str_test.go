package utils

import (
	"testing"

	"github.com/projecteru2/yafuse/pkg/test/assert"
)

func TestMergeStrings(t *testing.T) {
	var cases = []struct {
		a, b []string
		exp  []string
	}{
		{
			[]string{},
			[]string{},
			[]string{},
		},
		{
			[]string{},
			[]string{"a"},
			[]string{"a"},
		},
		{
			[]string{"a"},
			[]string{},
			[]string{"a"},
		},
		{
			[]string{"a"},
			[]string{"b"},
			[]string{"a", "b"},
		},
		{
			[]string{"a", "a"},
			[]string{"b", "b"},
			[]string{"a", "b"},
		},
		{
			[]string{"a", "b"},
			[]string{"b", "c"},
			[]string{"a", "b", "c"},
		},
	}

	for _, c := range cases {
		assert.Equal(t, c.exp, MergeStrings(c.a, c.b))
	}
}

func TestPartLeft(t *testing.T) {
	tests := []struct {
		in  string
		exp []string
	}{
		{"abc", []string{"abc", ""}},
		{".abc", []string{"", "abc"}},
		{"a.bc", []string{"a", "bc"}},
		{"abc.", []string{"abc", ""}},
		{"a.b.c", []string{"a", "b.c"}},
	}

	for _, tc := range tests {
		var a, b = PartLeft(tc.in, ".")
		assert.Equal(t, tc.exp[0], a)
		assert.Equal(t, tc.exp[1], b)
	}

}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"0x1", "0x3"}, SplitList("0x1, 0x3"))
	assert.Equal(t, []string{"0x1", "0x3", "4"}, SplitList("0x1|0x3|,4"))
	assert.Equal(t, []string{}, SplitList(" , "))
}

func TestUUIDStr(t *testing.T) {
	a, err := UUIDStr()
	assert.NilErr(t, err)
	b, err := UUIDStr()
	assert.NilErr(t, err)
	assert.Len(t, a, 36)
	assert.True(t, a != b)
}
