package algorithms

import (
	"fmt"
	"slices"

	"github.com/jdharms/algoviz/internal/scene"
	"github.com/jdharms/algoviz/internal/step"
)

const mergeCode = `func mergeSort(arr []int, lo, hi int) {
    if lo >= hi {
        return
    }
    mid := (lo + hi) / 2
    mergeSort(arr, lo, mid)
    mergeSort(arr, mid+1, hi)
    merge(arr, lo, mid, hi)
}

func merge(arr []int, lo, mid, hi int) {
    aux := slices.Clone(arr[lo : hi+1])
    i, j, k := lo, mid+1, lo
    for i <= mid && j <= hi {
        if aux[i-lo] <= aux[j-lo] {
            arr[k] = aux[i-lo]
            i++
        } else {
            arr[k] = aux[j-lo]
            j++
        }
        k++
    }
    // copy whatever is left of either half
}`

const quickCode = `func quickSort(arr []int, lo, hi int) {
    if lo < hi {
        p := partition(arr, lo, hi)
        quickSort(arr, lo, p-1)
        quickSort(arr, p+1, hi)
    }
}

func partition(arr []int, lo, hi int) int {
    pivot := arr[hi]
    i := lo - 1
    for j := lo; j < hi; j++ {
        if arr[j] < pivot {
            i++
            arr[i], arr[j] = arr[j], arr[i]
        }
    }
    arr[i+1], arr[hi] = arr[hi], arr[i+1]
    return i + 1
}`

// MergeSort splits the array in halves and merges them back with overwrites
type MergeSort struct {
	arrayProducer
}

// NewMergeSort creates the merge sort producer
func NewMergeSort(opts Options) Producer {
	return &MergeSort{arrayProducer{opts: opts, size: 16, spacing: 1.0}}
}

// Info implements Producer
func (p *MergeSort) Info() Info {
	return Info{
		Slug:        "merge-sort",
		Name:        "Merge Sort",
		Tier:        2,
		Category:    "Sorting",
		Description: "Divides the array into halves, sorts each half and merges the sorted halves back together.",
		Code:        mergeCode,
	}
}

type mergeFrame struct {
	lo, hi int
	split  bool
}

type mergeRun struct {
	lo, mid, hi int
	i, j, k     int
	aux         []int
}

// Execute implements Producer
func (p *MergeSort) Execute(s Snapshot) step.Sequence {
	data, ok := s.(*ArrayData)
	if !ok {
		return step.Empty()
	}
	arr := slices.Clone(data.Values)
	n := len(arr)

	var frames step.Stack[mergeFrame]
	var merging *mergeRun
	started := false

	run := step.NewPump(func(emit step.Emit) bool {
		if !started {
			started = true
			emit(step.HighlightCode{Line: 1, Narrative: "Initializing merge sort"})
			frames.Push(mergeFrame{lo: 0, hi: n - 1})
			return true
		}

		if m := merging; m != nil {
			place := func(v int, narrative string) {
				arr[m.k] = v
				emit(step.Overwrite{Index: m.k, Value: float64(v), Narrative: narrative})
				m.k++
			}
			switch {
			case m.i <= m.mid && m.j <= m.hi:
				left, right := m.aux[m.i-m.lo], m.aux[m.j-m.lo]
				emit(step.Compare{
					Targets:   []int{m.i, m.j},
					Narrative: fmt.Sprintf("Comparing left %d with right %d", left, right),
				})
				emit(step.HighlightCode{Line: 15})
				if left <= right {
					place(left, fmt.Sprintf("Left value %d is smaller, placing at %d", left, m.k))
					m.i++
				} else {
					place(right, fmt.Sprintf("Right value %d is smaller, placing at %d", right, m.k))
					m.j++
				}
			case m.i <= m.mid:
				place(m.aux[m.i-m.lo], "Collecting remaining left values")
				m.i++
			case m.j <= m.hi:
				place(m.aux[m.j-m.lo], "Collecting remaining right values")
				m.j++
			default:
				for x := m.lo; x <= m.hi; x++ {
					emit(step.ActivatePillar{Ref: step.At(x), State: scene.StateDefault})
				}
				merging = nil
			}
			return true
		}

		f, ok := frames.Pop()
		if !ok {
			return false
		}
		if f.lo >= f.hi {
			return true
		}

		mid := (f.lo + f.hi) / 2
		if !f.split {
			// Children are pushed above the merge frame so both halves finish first
			frames.Push(mergeFrame{lo: f.lo, hi: f.hi, split: true})
			frames.Push(mergeFrame{lo: mid + 1, hi: f.hi})
			frames.Push(mergeFrame{lo: f.lo, hi: mid})
			emit(step.HighlightCode{Line: 5})
			return true
		}

		for x := f.lo; x <= f.hi; x++ {
			st := scene.StateLeft
			if x > mid {
				st = scene.StateRight
			}
			emit(step.ActivatePillar{Ref: step.At(x), State: st})
		}
		emit(step.Delay{
			Duration:  400,
			Narrative: fmt.Sprintf("Merging groups [%d-%d] and [%d-%d]", f.lo, mid, mid+1, f.hi),
		})
		emit(step.HighlightCode{Line: 8})
		merging = &mergeRun{
			lo: f.lo, mid: mid, hi: f.hi,
			i: f.lo, j: mid + 1, k: f.lo,
			aux: slices.Clone(arr[f.lo : f.hi+1]),
		}
		return true
	})

	return step.Concat(run, finale("Merge sort complete", n))
}

// QuickSort partitions around the last element of each range
type QuickSort struct {
	arrayProducer
}

// NewQuickSort creates the quick sort producer
func NewQuickSort(opts Options) Producer {
	return &QuickSort{arrayProducer{opts: opts, size: 12, spacing: 1.2}}
}

// Info implements Producer
func (p *QuickSort) Info() Info {
	return Info{
		Slug:        "quick-sort",
		Name:        "Quick Sort",
		Tier:        2,
		Category:    "Sorting",
		Description: "Picks a pivot, partitions smaller elements to its left and larger ones to its right, then sorts each side.",
		Code:        quickCode,
	}
}

type partitionRun struct {
	lo, hi int
	i, j   int
	pivot  int
}

// Execute implements Producer
func (p *QuickSort) Execute(s Snapshot) step.Sequence {
	data, ok := s.(*ArrayData)
	if !ok {
		return step.Empty()
	}
	arr := slices.Clone(data.Values)
	n := len(arr)

	var ranges step.Stack[[2]int]
	var part *partitionRun
	started := false

	run := step.NewPump(func(emit step.Emit) bool {
		if !started {
			started = true
			emit(step.HighlightCode{Line: 1, Narrative: "Initializing quick sort"})
			ranges.Push([2]int{0, n - 1})
			return true
		}

		if pr := part; pr != nil {
			if pr.j < pr.hi {
				emit(step.HighlightCode{Line: 12})
				emit(step.Compare{
					Targets:   []int{pr.j, pr.hi},
					Narrative: fmt.Sprintf("Comparing %d with pivot %d", arr[pr.j], pr.pivot),
				})
				if arr[pr.j] < pr.pivot {
					pr.i++
					emit(step.HighlightCode{Line: 15})
					if pr.i != pr.j {
						emit(step.Swap{
							Targets:   []int{pr.i, pr.j},
							Narrative: fmt.Sprintf("%d is smaller than the pivot, moving it left", arr[pr.j]),
						})
						arr[pr.i], arr[pr.j] = arr[pr.j], arr[pr.i]
					}
				}
				pr.j++
				return true
			}

			at := pr.i + 1
			emit(step.HighlightCode{Line: 18})
			if at != pr.hi {
				emit(step.Swap{Targets: []int{at, pr.hi}, Narrative: "Placing pivot"})
				arr[at], arr[pr.hi] = arr[pr.hi], arr[at]
			}
			emit(step.ActivatePillar{
				Ref:       step.At(at),
				State:     scene.StateSorted,
				Narrative: fmt.Sprintf("Pivot %d fixed at index %d", arr[at], at),
			})
			emit(step.HighlightCode{Line: 4})
			ranges.Push([2]int{at + 1, pr.hi})
			ranges.Push([2]int{pr.lo, at - 1})
			part = nil
			return true
		}

		r, ok := ranges.Pop()
		if !ok {
			return false
		}
		lo, hi := r[0], r[1]
		if lo > hi {
			return true
		}
		if lo == hi {
			emit(step.ActivatePillar{Ref: step.At(lo), State: scene.StateSorted})
			return true
		}

		emit(step.HighlightCode{Line: 2})
		emit(step.ActivatePillar{
			Ref:       step.At(hi),
			State:     scene.StateActive,
			Narrative: fmt.Sprintf("Pivot: %d", arr[hi]),
		})
		emit(step.HighlightCode{Line: 10})
		part = &partitionRun{lo: lo, hi: hi, i: lo - 1, j: lo, pivot: arr[hi]}
		return true
	})

	return step.Concat(run, finale("Quick sort complete", n))
}
