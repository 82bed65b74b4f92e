package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testItem struct {
	value int
}

func (i *testItem) Reset() {
	i.value = 0
}

func TestPool_GetEmpty(t *testing.T) {
	p := New[*testItem](2)
	assert.Nil(t, p.Get())
}

func TestPool_PutResets(t *testing.T) {
	p := New[*testItem](2)

	item := &testItem{value: 42}
	p.Put(item)

	got := p.Get()
	assert.Same(t, item, got)
	assert.Equal(t, 0, got.value)
}

func TestPool_FullDiscards(t *testing.T) {
	p := New[*testItem](1)

	first := &testItem{value: 1}
	second := &testItem{value: 2}
	p.Put(first)
	p.Put(second)

	assert.Same(t, first, p.Get())
	assert.Nil(t, p.Get())
}

func TestPool_PutNil(t *testing.T) {
	p := New[*testItem](1)
	p.Put(nil)
	assert.Nil(t, p.Get())
}
