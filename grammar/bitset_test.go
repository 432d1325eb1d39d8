package grammar

import "testing"

func TestBitsetSetTest(t *testing.T) {
	b := newBitset(130)
	b.set(0)
	b.set(64)
	b.set(129)
	for _, i := range []int{0, 64, 129} {
		if !b.test(i) {
			t.Fatalf("bit %d should be set", i)
		}
	}
	for _, i := range []int{1, 63, 65, 128} {
		if b.test(i) {
			t.Fatalf("bit %d should not be set", i)
		}
	}
}

func TestBitsetOrReportsChanged(t *testing.T) {
	a := newBitset(10)
	b := newBitset(10)
	b.set(5)

	if changed := a.or(b); !changed {
		t.Fatal("expected or to report a change")
	}
	if !a.test(5) {
		t.Fatal("expected bit 5 set after merge")
	}
	if changed := a.or(b); changed {
		t.Fatal("expected no change merging the same bits again")
	}
}

func TestBitsetIsEmpty(t *testing.T) {
	b := newBitset(64)
	if !b.isEmpty() {
		t.Fatal("fresh bitset should be empty")
	}
	b.set(10)
	if b.isEmpty() {
		t.Fatal("bitset with a set bit should not be empty")
	}
}

func TestBitsetForEachVisitsEverySetBit(t *testing.T) {
	b := newBitset(200)
	want := []int{3, 70, 199}
	for _, i := range want {
		b.set(i)
	}
	var got []int
	b.forEach(func(i int) { got = append(got, i) })
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestBitsetKeyDistinguishesContent(t *testing.T) {
	a := newBitset(70)
	b := newBitset(70)
	a.set(69)
	if a.key() == b.key() {
		t.Fatal("bitsets with different content should have different keys")
	}
	c := newBitset(70)
	c.set(69)
	if a.key() != c.key() {
		t.Fatal("bitsets with identical content should have identical keys")
	}
}
