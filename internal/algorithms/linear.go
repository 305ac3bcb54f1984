package algorithms

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jdharms/algoviz/internal/scene"
	"github.com/jdharms/algoviz/internal/step"
)

const binarySearchCode = `func binarySearch(arr []int, target int) int {
    left, right := 0, len(arr)-1
    for left <= right {
        mid := (left + right) / 2
        if arr[mid] == target {
            return mid
        }
        if arr[mid] < target {
            left = mid + 1
        } else {
            right = mid - 1
        }
    }
    return -1
}`

const reverseCode = `func reverse(arr []int) {
    left, right := 0, len(arr)-1
    for left < right {
        arr[left], arr[right] = arr[right], arr[left]
        left++
        right--
    }
}`

const slidingWindowCode = `func maxSlidingWindow(nums []int, k int) []int {
    var dq, result []int
    for i := range nums {
        if len(dq) > 0 && dq[0] < i-k+1 {
            dq = dq[1:]
        }
        for len(dq) > 0 && nums[dq[len(dq)-1]] < nums[i] {
            dq = dq[:len(dq)-1]
        }
        dq = append(dq, i)
        if i >= k-1 {
            result = append(result, nums[dq[0]])
        }
    }
    return result
}`

// FrameID is the id of the sliding window frame entity
const FrameID = "window-frame"

// sequential returns 1..n, or the option values when set
func sequential(opts Options, n int) []int {
	if len(opts.Values) > 0 {
		return slices.Clone(opts.Values)
	}
	values := make([]int, n)
	for i := range values {
		values[i] = i + 1
	}
	return values
}

// BinarySearch halves a sorted row of spheres until it finds the target
type BinarySearch struct {
	opts Options
}

// NewBinarySearch creates the binary search producer
func NewBinarySearch(opts Options) Producer {
	return &BinarySearch{opts: opts}
}

// Info implements Producer
func (p *BinarySearch) Info() Info {
	return Info{
		Slug:        "binary-search",
		Name:        "Binary Search",
		Tier:        1,
		Category:    "Search",
		Description: "Finds an item in a sorted list by repeatedly dividing the search interval in half.",
		Code:        binarySearchCode,
	}
}

// Initialize implements Producer
func (p *BinarySearch) Initialize() Snapshot {
	values := sequential(p.opts, p.opts.size(15))
	slices.Sort(values)
	target := 0
	if len(values) > 0 {
		target = values[p.opts.rng().IntN(len(values))]
	}
	return &ArrayData{Values: values, Target: target}
}

// MapToVisual implements Producer
func (p *BinarySearch) MapToVisual(s Snapshot) []scene.Entity {
	data, ok := s.(*ArrayData)
	if !ok {
		return nil
	}
	return sphereRow(data.Values, 1.5, 0)
}

// Execute implements Producer
func (p *BinarySearch) Execute(s Snapshot) step.Sequence {
	data, ok := s.(*ArrayData)
	if !ok {
		return step.Empty()
	}
	arr := data.Values
	target := data.Target
	left, right := 0, len(arr)-1
	started, done := false, false

	return step.NewPump(func(emit step.Emit) bool {
		if !started {
			started = true
			emit(step.Delay{Duration: 300, Narrative: fmt.Sprintf("Target: %d", target)})
			emit(step.HighlightCode{Line: 2})
			return true
		}
		if left > right {
			emit(step.HighlightCode{Line: 14})
			emit(step.Complete{Narrative: fmt.Sprintf("%d not found", target)})
			return false
		}

		mid := (left + right) / 2
		emit(step.HighlightCode{Line: 3})
		for i := range arr {
			switch {
			case i < left || i > right:
				emit(step.ActivateSphere{Ref: step.At(i), State: scene.StateVisited})
			case i != mid:
				emit(step.ActivateSphere{Ref: step.At(i), State: scene.StateDefault})
			}
		}
		emit(step.ActivateSphere{Ref: step.At(mid), State: scene.StateActive, Narrative: fmt.Sprintf("Mid index: %d", mid)})
		emit(step.HighlightCode{Line: 4})
		emit(step.Compare{Targets: []int{mid}, Narrative: fmt.Sprintf("arr[%d] = %d vs %d", mid, arr[mid], target)})
		emit(step.HighlightCode{Line: 5})

		switch {
		case arr[mid] == target:
			emit(step.ActivateSphere{Ref: step.At(mid), State: scene.StateSorted, Narrative: fmt.Sprintf("Found at index %d", mid)})
			emit(step.HighlightCode{Line: 6})
			emit(step.Complete{Narrative: "Search complete"})
			emit(step.Celebrate{Targets: []int{mid}})
			done = true
		case arr[mid] < target:
			emit(step.Delay{Duration: 200, Narrative: fmt.Sprintf("%d < %d, search right", arr[mid], target)})
			emit(step.HighlightCode{Line: 9})
			for i := left; i <= mid; i++ {
				emit(step.ActivateSphere{Ref: step.At(i), State: scene.StateVisited})
			}
			left = mid + 1
		default:
			emit(step.Delay{Duration: 200, Narrative: fmt.Sprintf("%d > %d, search left", arr[mid], target)})
			emit(step.HighlightCode{Line: 11})
			for i := mid; i <= right; i++ {
				emit(step.ActivateSphere{Ref: step.At(i), State: scene.StateVisited})
			}
			right = mid - 1
		}
		if !done {
			emit(step.Delay{Duration: 300})
		}
		return !done
	})
}

// ReverseArray swaps spheres from both ends toward the middle
type ReverseArray struct {
	opts Options
}

// NewReverseArray creates the array reversal producer
func NewReverseArray(opts Options) Producer {
	return &ReverseArray{opts: opts}
}

// Info implements Producer
func (p *ReverseArray) Info() Info {
	return Info{
		Slug:        "reverse-array",
		Name:        "Reverse Array",
		Tier:        1,
		Category:    "Two Pointers",
		Description: "Reverses an array in place by swapping elements from both ends until the pointers meet.",
		Code:        reverseCode,
	}
}

// Initialize implements Producer
func (p *ReverseArray) Initialize() Snapshot {
	return &ArrayData{Values: sequential(p.opts, p.opts.size(11))}
}

// MapToVisual implements Producer
func (p *ReverseArray) MapToVisual(s Snapshot) []scene.Entity {
	data, ok := s.(*ArrayData)
	if !ok {
		return nil
	}
	return sphereRow(data.Values, 1.5, 3)
}

// Execute implements Producer
func (p *ReverseArray) Execute(s Snapshot) step.Sequence {
	data, ok := s.(*ArrayData)
	if !ok {
		return step.Empty()
	}
	arr := slices.Clone(data.Values)
	left, right := 0, len(arr)-1
	started := false

	return step.NewPump(func(emit step.Emit) bool {
		if !started {
			started = true
			emit(step.Delay{Duration: 500, Narrative: "Initial array"})
			return true
		}
		if left >= right {
			if left == right {
				emit(step.ActivateSphere{Ref: step.At(left), State: scene.StateSorted, Narrative: "Middle element reached"})
			}
			emit(step.Complete{Narrative: "Array reversal complete"})
			return false
		}

		emit(step.ActivateSphere{Ref: step.At(left), State: scene.StateLeft, Narrative: fmt.Sprintf("Left pointer: index %d", left)})
		emit(step.ActivateSphere{Ref: step.At(right), State: scene.StateRight, Narrative: fmt.Sprintf("Right pointer: index %d", right)})
		emit(step.HighlightCode{Line: 3})
		emit(step.Swap{Targets: []int{left, right}, Narrative: fmt.Sprintf("Swap %d and %d", arr[left], arr[right])})
		arr[left], arr[right] = arr[right], arr[left]
		emit(step.HighlightCode{Line: 4})
		emit(step.ActivateSphere{Ref: step.At(left), State: scene.StateSorted})
		emit(step.ActivateSphere{Ref: step.At(right), State: scene.StateSorted})
		left++
		right--
		emit(step.HighlightCode{Line: 5})
		emit(step.Delay{Duration: 300})
		return true
	})
}

// SlidingWindowMax tracks the maximum of every window with a monotonic deque
type SlidingWindowMax struct {
	opts Options
}

// NewSlidingWindowMax creates the sliding window maximum producer
func NewSlidingWindowMax(opts Options) Producer {
	return &SlidingWindowMax{opts: opts}
}

// Info implements Producer
func (p *SlidingWindowMax) Info() Info {
	return Info{
		Slug:        "sliding-window-max",
		Name:        "Sliding Window Maximum",
		Tier:        1,
		Category:    "Sliding Window",
		Description: "Finds the maximum of every window of size k using a deque of candidate indices.",
		Code:        slidingWindowCode,
	}
}

const windowGap = 1.5

// Initialize implements Producer
func (p *SlidingWindowMax) Initialize() Snapshot {
	values := []int{1, 3, 1, 2, 5, 1, 3, 6, 1, 2, 4, 2}
	if len(p.opts.Values) > 0 {
		values = slices.Clone(p.opts.Values)
	}
	return &ArrayData{Values: values, Window: min(3, len(values))}
}

func windowX(n int, center float64) float64 {
	return (center - float64(n-1)/2) * windowGap
}

// MapToVisual implements Producer
func (p *SlidingWindowMax) MapToVisual(s Snapshot) []scene.Entity {
	data, ok := s.(*ArrayData)
	if !ok {
		return nil
	}
	n := len(data.Values)
	out := make([]scene.Entity, 0, n+1)
	for i, v := range data.Values {
		out = append(out, scene.Entity{
			ID:       scene.PillarID(i),
			Kind:     scene.KindBar,
			Position: scene.Vec3{windowX(n, float64(i)), 0, 0},
			Value:    float64(v),
			Height:   float64(v),
			State:    scene.StateDefault,
		})
	}
	return append(out, scene.Entity{
		ID:       FrameID,
		Kind:     scene.KindFrame,
		Position: scene.Vec3{windowX(n, 0), 0, 0},
		Width:    float64(data.Window)*windowGap + 0.5,
		Height:   7,
		State:    scene.StateDefault,
	})
}

// Execute implements Producer
func (p *SlidingWindowMax) Execute(s Snapshot) step.Sequence {
	data, ok := s.(*ArrayData)
	if !ok {
		return step.Empty()
	}
	nums := data.Values
	n, k := len(nums), data.Window
	var dq, result []int
	i := -1

	pillar := func(idx int, st scene.State, narrative string) step.Step {
		return step.ActivatePillar{Ref: step.Named(scene.PillarID(idx)), State: st, Narrative: narrative}
	}

	return step.NewPump(func(emit step.Emit) bool {
		if i < 0 {
			i = 0
			emit(step.Delay{Duration: 800, Narrative: fmt.Sprintf("Sliding window maximum (k=%d)", k)})
			return true
		}
		if i >= n || k <= 0 {
			parts := make([]string, len(result))
			for x, v := range result {
				parts[x] = strconv.Itoa(v)
			}
			emit(step.Complete{Narrative: fmt.Sprintf("Result: [%s]", strings.Join(parts, ", "))})
			return false
		}

		leftEdge := max(0, i-k+1)
		emit(step.Move{ID: FrameID, Position: scene.Vec3{windowX(n, float64(leftEdge+i)/2), 0, 0}})
		emit(step.HighlightCode{Line: 3})

		if len(dq) > 0 && dq[0] < i-k+1 {
			out := dq[0]
			dq = dq[1:]
			emit(step.HighlightCode{Line: 5})
			emit(pillar(out, scene.StateVisited, fmt.Sprintf("%d slides out of the window", nums[out])))
		}

		for len(dq) > 0 && nums[dq[len(dq)-1]] < nums[i] {
			loser := dq[len(dq)-1]
			dq = dq[:len(dq)-1]
			emit(step.HighlightCode{Line: 8})
			emit(pillar(loser, scene.StateRight, fmt.Sprintf("%d eliminated by %d", nums[loser], nums[i])))
			emit(step.Delay{Duration: 200})
		}

		dq = append(dq, i)
		emit(step.HighlightCode{Line: 10})
		emit(pillar(i, scene.StateActive, fmt.Sprintf("%d enters the window", nums[i])))
		emit(step.Delay{Duration: 300})

		if i >= k-1 {
			maxIdx := dq[0]
			result = append(result, nums[maxIdx])
			start := i - k + 1
			emit(step.HighlightCode{Line: 12})
			for w := start; w <= i; w++ {
				switch {
				case w == maxIdx:
					emit(pillar(w, scene.StateSorted, ""))
				case slices.Contains(dq, w):
					emit(pillar(w, scene.StateLeft, ""))
				default:
					emit(pillar(w, scene.StateVisited, ""))
				}
			}
			emit(step.Delay{Duration: 700, Narrative: fmt.Sprintf("Window [%d..%d]: max = %d", start, i, nums[maxIdx])})
			for w := start; w <= i; w++ {
				if w != maxIdx && w < n-1 {
					emit(pillar(w, scene.StateDefault, ""))
				}
			}
		}
		i++
		return true
	})
}
