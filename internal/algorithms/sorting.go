package algorithms

import (
	"fmt"
	"slices"

	"github.com/jdharms/algoviz/internal/scene"
	"github.com/jdharms/algoviz/internal/step"
)

const bubbleCode = `func bubbleSort(arr []int) {
    n := len(arr)
    for i := 0; i < n; i++ {
        for j := 0; j < n-i-1; j++ {
            if arr[j] > arr[j+1] {
                arr[j], arr[j+1] = arr[j+1], arr[j]
            }
        }
    }
}`

const selectionCode = `func selectionSort(arr []int) {
    n := len(arr)
    for i := 0; i < n-1; i++ {
        minIdx := i
        for j := i + 1; j < n; j++ {
            if arr[j] < arr[minIdx] {
                minIdx = j
            }
        }
        arr[i], arr[minIdx] = arr[minIdx], arr[i]
    }
}`

const insertionCode = `func insertionSort(arr []int) {
    for i := 1; i < len(arr); i++ {
        key := arr[i]
        j := i - 1
        for j >= 0 && arr[j] > key {
            arr[j+1] = arr[j]
            j--
        }
        arr[j+1] = key
    }
}`

// arrayProducer carries what the bar-based sorts share
type arrayProducer struct {
	opts    Options
	size    int
	spacing float64
}

func (p arrayProducer) Initialize() Snapshot {
	return &ArrayData{Values: p.opts.randomValues(p.opts.size(p.size), 2, 10)}
}

func (p arrayProducer) MapToVisual(s Snapshot) []scene.Entity {
	data, ok := s.(*ArrayData)
	if !ok {
		return nil
	}
	return barRow(data.Values, p.spacing)
}

// finale announces completion and celebrates each position in order
func finale(narrative string, n int) step.Sequence {
	k := -1
	return step.Func(func() (step.Step, bool) {
		switch {
		case k < 0:
			k = 0
			return step.Complete{Narrative: narrative}, true
		case k < n:
			k++
			return step.Celebrate{Targets: []int{k - 1}}, true
		default:
			return nil, false
		}
	})
}

// BubbleSort swaps adjacent out-of-order bars until the array is sorted
type BubbleSort struct {
	arrayProducer
}

// NewBubbleSort creates the bubble sort producer
func NewBubbleSort(opts Options) Producer {
	return &BubbleSort{arrayProducer{opts: opts, size: 10, spacing: 1.5}}
}

// Info implements Producer
func (p *BubbleSort) Info() Info {
	return Info{
		Slug:        "bubble-sort",
		Name:        "Bubble Sort",
		Tier:        1,
		Category:    "Sorting",
		Description: "Repeatedly steps through the list, compares adjacent elements and swaps them if they are in the wrong order.",
		Code:        bubbleCode,
	}
}

const (
	phaseStart = iota
	phaseOuter
	phaseInner
	phaseDone
)

// Execute implements Producer
func (p *BubbleSort) Execute(s Snapshot) step.Sequence {
	data, ok := s.(*ArrayData)
	if !ok {
		return step.Empty()
	}
	arr := slices.Clone(data.Values)
	n := len(arr)
	i, j := 0, 0
	phase := phaseStart

	run := step.NewPump(func(emit step.Emit) bool {
		switch phase {
		case phaseStart:
			emit(step.HighlightCode{Line: 1, Narrative: "Initializing bubble sort"})
			emit(step.Delay{Duration: 500})
			phase = phaseOuter
		case phaseOuter:
			if i >= n {
				return false
			}
			emit(step.HighlightCode{Line: 3})
			j = 0
			phase = phaseInner
		case phaseInner:
			if j >= n-i-1 {
				i++
				phase = phaseOuter
				return true
			}
			emit(step.HighlightCode{Line: 4})
			emit(step.Compare{
				Targets:   []int{j, j + 1},
				Narrative: fmt.Sprintf("Comparing %d and %d", arr[j], arr[j+1]),
			})
			emit(step.HighlightCode{Line: 5})
			if arr[j] > arr[j+1] {
				emit(step.HighlightCode{Line: 6})
				emit(step.Swap{
					Targets:   []int{j, j + 1},
					Narrative: fmt.Sprintf("Swapping index %d and %d", j, j+1),
				})
				arr[j], arr[j+1] = arr[j+1], arr[j]
			}
			j++
		}
		return true
	})

	return step.Concat(run, finale("Array sorted", n))
}

// SelectionSort moves the minimum of the unsorted tail to its front
type SelectionSort struct {
	arrayProducer
}

// NewSelectionSort creates the selection sort producer
func NewSelectionSort(opts Options) Producer {
	return &SelectionSort{arrayProducer{opts: opts, size: 10, spacing: 1.5}}
}

// Info implements Producer
func (p *SelectionSort) Info() Info {
	return Info{
		Slug:        "selection-sort",
		Name:        "Selection Sort",
		Tier:        1,
		Category:    "Sorting",
		Description: "Finds the minimum of the unsorted part and places it at the beginning, one position at a time.",
		Code:        selectionCode,
	}
}

// Execute implements Producer
func (p *SelectionSort) Execute(s Snapshot) step.Sequence {
	data, ok := s.(*ArrayData)
	if !ok {
		return step.Empty()
	}
	arr := slices.Clone(data.Values)
	n := len(arr)
	i, j, minIdx := 0, 0, 0
	phase := phaseOuter

	run := step.NewPump(func(emit step.Emit) bool {
		switch phase {
		case phaseOuter:
			if i >= n-1 {
				if n > 0 {
					emit(step.ActivatePillar{Ref: step.At(n - 1), State: scene.StateSorted})
				}
				return false
			}
			minIdx = i
			emit(step.ActivatePillar{
				Ref:       step.At(minIdx),
				State:     scene.StateLeft,
				Narrative: fmt.Sprintf("Current minimum: %d", arr[minIdx]),
			})
			emit(step.HighlightCode{Line: 4})
			j = i + 1
			phase = phaseInner
		case phaseInner:
			if j >= n {
				phase = phaseDone
				return true
			}
			emit(step.HighlightCode{Line: 5})
			emit(step.Compare{
				Targets:   []int{j, minIdx},
				Narrative: fmt.Sprintf("Checking %d against minimum %d", arr[j], arr[minIdx]),
			})
			emit(step.HighlightCode{Line: 6})
			if arr[j] < arr[minIdx] {
				emit(step.ActivatePillar{Ref: step.At(minIdx), State: scene.StateDefault})
				minIdx = j
				emit(step.ActivatePillar{
					Ref:       step.At(minIdx),
					State:     scene.StateLeft,
					Narrative: fmt.Sprintf("New minimum found: %d", arr[minIdx]),
				})
				emit(step.HighlightCode{Line: 7})
			}
			j++
		case phaseDone:
			if minIdx != i {
				emit(step.HighlightCode{Line: 10})
				emit(step.Swap{
					Targets:   []int{i, minIdx},
					Narrative: fmt.Sprintf("Moving %d to sorted position %d", arr[minIdx], i),
				})
				arr[i], arr[minIdx] = arr[minIdx], arr[i]
			}
			emit(step.ActivatePillar{
				Ref:       step.At(i),
				State:     scene.StateSorted,
				Narrative: fmt.Sprintf("%d is now in its final position", arr[i]),
			})
			i++
			phase = phaseOuter
		}
		return true
	})

	return step.Concat(run, finale("Selection sort complete", n))
}

// InsertionSort grows a sorted prefix by sinking each new element into place
type InsertionSort struct {
	arrayProducer
}

// NewInsertionSort creates the insertion sort producer
func NewInsertionSort(opts Options) Producer {
	return &InsertionSort{arrayProducer{opts: opts, size: 10, spacing: 1.5}}
}

// Info implements Producer
func (p *InsertionSort) Info() Info {
	return Info{
		Slug:        "insertion-sort",
		Name:        "Insertion Sort",
		Tier:        1,
		Category:    "Sorting",
		Description: "Builds the sorted array one item at a time by shifting each new element left past larger ones.",
		Code:        insertionCode,
	}
}

// Execute implements Producer
func (p *InsertionSort) Execute(s Snapshot) step.Sequence {
	data, ok := s.(*ArrayData)
	if !ok {
		return step.Empty()
	}
	arr := slices.Clone(data.Values)
	n := len(arr)
	i, cur := 1, 0
	phase := phaseStart

	run := step.NewPump(func(emit step.Emit) bool {
		switch phase {
		case phaseStart:
			if n == 0 {
				return false
			}
			emit(step.ActivatePillar{Ref: step.At(0), State: scene.StateSorted, Narrative: "First element is considered sorted"})
			phase = phaseOuter
		case phaseOuter:
			if i >= n {
				return false
			}
			emit(step.HighlightCode{Line: 2})
			emit(step.ActivatePillar{
				Ref:       step.At(i),
				State:     scene.StateActive,
				Narrative: fmt.Sprintf("Inserting %d", arr[i]),
			})
			emit(step.HighlightCode{Line: 3})
			cur = i
			phase = phaseInner
		case phaseInner:
			if cur == 0 {
				phase = phaseDone
				return true
			}
			emit(step.HighlightCode{Line: 5})
			if arr[cur-1] <= arr[cur] {
				emit(step.Compare{
					Targets:   []int{cur - 1, cur},
					Narrative: fmt.Sprintf("%d <= %d, no shift needed", arr[cur-1], arr[cur]),
				})
				phase = phaseDone
				return true
			}
			emit(step.Compare{
				Targets:   []int{cur - 1, cur},
				Narrative: fmt.Sprintf("%d > %d, shifting", arr[cur-1], arr[cur]),
			})
			emit(step.HighlightCode{Line: 6})
			emit(step.Swap{Targets: []int{cur - 1, cur}})
			emit(step.Delay{Duration: 150})
			arr[cur-1], arr[cur] = arr[cur], arr[cur-1]
			cur--
		case phaseDone:
			emit(step.HighlightCode{Line: 9})
			for x := 0; x <= i; x++ {
				emit(step.ActivatePillar{Ref: step.At(x), State: scene.StateSorted})
			}
			i++
			phase = phaseOuter
		}
		return true
	})

	return step.Concat(run, finale("Insertion sort complete", n))
}
