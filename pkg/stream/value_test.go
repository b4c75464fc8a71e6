package stream

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubscribeReplaysCurrentValue(t *testing.T) {
	v := NewValue(42)

	var got []int
	cancel := v.Subscribe(func(n int) { got = append(got, n) })
	defer cancel()

	require.Equal(t, []int{42}, got)
}

func TestSetNotifiesAllSubscribers(t *testing.T) {
	v := NewValue("a")

	var first, second []string
	c1 := v.Subscribe(func(s string) { first = append(first, s) })
	c2 := v.Subscribe(func(s string) { second = append(second, s) })
	defer c1()
	defer c2()

	v.Set("b")
	v.Set("c")

	require.Equal(t, []string{"a", "b", "c"}, first)
	require.Equal(t, []string{"a", "b", "c"}, second)
	require.Equal(t, "c", v.Get())
}

func TestCancelStopsDelivery(t *testing.T) {
	v := NewValue(0)

	var got []int
	cancel := v.Subscribe(func(n int) { got = append(got, n) })

	v.Set(1)
	cancel()
	v.Set(2)

	require.Equal(t, []int{0, 1}, got)
}

func TestCancelDoesNotAffectOthers(t *testing.T) {
	v := NewValue(0)

	var kept []int
	cancel := v.Subscribe(func(int) {})
	keep := v.Subscribe(func(n int) { kept = append(kept, n) })
	defer keep()

	cancel()
	v.Set(7)

	require.Equal(t, []int{0, 7}, kept)
}
