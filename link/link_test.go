package link

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type triple struct{ s, d, w int }

func toTriples(t Table) []triple {
	retVal := make([]triple, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		retVal = append(retVal, triple{t.Src(i), t.Dst(i), t.Weight(i)})
	}
	return retVal
}

func randomTable(r *rand.Rand, n, cells int) Table {
	t := Make(n)
	for i := 0; i < n; i++ {
		// weight doubles as the insertion order so stability can be checked
		t.Add(r.Intn(cells), r.Intn(cells), i)
	}
	return t
}

func TestSort(t *testing.T) {
	r := rand.New(rand.NewSource(1337))
	for _, n := range []int{0, 1, 2, 7, 19, 20, 21, 64, 500} {
		table := randomTable(r, n, 12)

		wantDst := toTriples(table)
		sort.SliceStable(wantDst, func(i, j int) bool {
			if wantDst[i].d != wantDst[j].d {
				return wantDst[i].d < wantDst[j].d
			}
			return wantDst[i].s < wantDst[j].s
		})
		byDst := table.Clone()
		SortDstMajor(byDst)
		if diff := cmp.Diff(wantDst, toTriples(byDst), cmp.AllowUnexported(triple{})); diff != "" {
			t.Errorf("n=%d dst-major mismatch (-want +got):\n%s", n, diff)
		}

		wantSrc := toTriples(table)
		sort.SliceStable(wantSrc, func(i, j int) bool {
			if wantSrc[i].s != wantSrc[j].s {
				return wantSrc[i].s < wantSrc[j].s
			}
			return wantSrc[i].d < wantSrc[j].d
		})
		bySrc := table.Clone()
		SortSrcMajor(bySrc)
		if diff := cmp.Diff(wantSrc, toTriples(bySrc), cmp.AllowUnexported(triple{})); diff != "" {
			t.Errorf("n=%d src-major mismatch (-want +got):\n%s", n, diff)
		}
	}
}

func TestSortAlreadySorted(t *testing.T) {
	assert := assert.New(t)
	table := Make(100)
	for i := 0; i < 100; i++ {
		table.Add(i%7, i, 0)
	}
	want := table.Clone()
	SortDstMajor(table)
	assert.Equal(want, table)
}

func TestDedup(t *testing.T) {
	assert := assert.New(t)
	table := Table{
		0, 2, WeightNeeded,
		1, 2, NoWeight,
		0, 2, NoWeight,
		1, 3, WeightNeeded,
		1, 3, WeightNeeded,
		0, 2, WeightNeeded,
	}
	SortDstMajor(table)
	table = Dedup(table)
	assert.Equal(Table{
		0, 2, WeightNeeded,
		1, 2, NoWeight,
		1, 3, WeightNeeded,
	}, table)
	assert.Nil(table.Check())

	r := rand.New(rand.NewSource(7))
	big := randomTable(r, 3000, 10)
	SortDstMajor(big)
	big = Dedup(big)
	seen := make(map[[2]int]bool)
	for i := 0; i < big.Len(); i++ {
		k := [2]int{big.Src(i), big.Dst(i)}
		assert.False(seen[k], "duplicate %v", k)
		seen[k] = true
	}
	assert.Equal(100, big.Len())
}

func TestReverse(t *testing.T) {
	assert := assert.New(t)
	table := Table{
		2, 0, 1,
		0, 1, 2,
		1, 1, 0,
	}
	SortDstMajor(table)
	rev := Reverse(table)
	// sorted by original source, src and dst swapped
	assert.Equal(Table{
		1, 0, 2,
		1, 1, 0,
		0, 2, 1,
	}, rev)
	assert.Equal(Table{2, 0, 1, 0, 1, 2, 1, 1, 0}, table)
}

func TestCheck(t *testing.T) {
	assert := assert.New(t)
	assert.NoError(Table{1, 2, 3}.Check())
	err := Table{1, 2}.Check()
	assert.Equal(ErrCorrupt, errors.Cause(err))
	assert.Equal("[(1,2,3) (4,5,0)]", Table{1, 2, 3, 4, 5, 0}.String())
}
