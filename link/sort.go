package link

// runs shorter than this many links are insertion sorted.
const insertionThreshold = 20

// SortDstMajor sorts t in place by (dst, src). The sort is stable.
func SortDstMajor(t Table) { sortTable(t, true) }

// SortSrcMajor sorts t in place by (src, dst). The sort is stable.
func SortSrcMajor(t Table) { sortTable(t, false) }

func sortTable(t Table, byDst bool) {
	n := len(t) - len(t)%Size
	if n <= Size {
		return
	}
	scratch := make([]int, n)
	copy(scratch, t[:n])
	mergeSort(scratch, t[:n], 0, n, byDst)
}

// less compares the link at flat offset i with the one at flat offset j.
func less(data []int, i, j int, byDst bool) bool {
	p, s := Src, Dst
	if byDst {
		p, s = Dst, Src
	}
	if data[i+p] != data[j+p] {
		return data[i+p] < data[j+p]
	}
	return data[i+s] < data[j+s]
}

// mergeSort sorts src[lo:hi] into dst[lo:hi]. On entry both ranges hold the same links;
// the two buffers swap roles at every level of recursion.
func mergeSort(src, dst []int, lo, hi int, byDst bool) {
	n := hi - lo
	if n < insertionThreshold*Size {
		insertionSort(dst, lo, hi, byDst)
		return
	}
	mid := lo + (n/Size/2)*Size
	mergeSort(dst, src, lo, mid, byDst)
	mergeSort(dst, src, mid, hi, byDst)

	// halves already in order
	if !less(src, mid, mid-Size, byDst) {
		copy(dst[lo:hi], src[lo:hi])
		return
	}

	p, q := lo, mid
	for i := lo; i < hi; i += Size {
		if q >= hi || (p < mid && !less(src, q, p, byDst)) {
			copy(dst[i:i+Size], src[p:p+Size])
			p += Size
		} else {
			copy(dst[i:i+Size], src[q:q+Size])
			q += Size
		}
	}
}

func insertionSort(data []int, lo, hi int, byDst bool) {
	for i := lo + Size; i < hi; i += Size {
		for j := i; j > lo && less(data, j, j-Size, byDst); j -= Size {
			for k := 0; k < Size; k++ {
				data[j+k], data[j-Size+k] = data[j-Size+k], data[j+k]
			}
		}
	}
}
