package algorithms

import (
	"fmt"

	"github.com/jdharms/algoviz/internal/scene"
	"github.com/jdharms/algoviz/internal/step"
)

const lcsCode = `func lcs(a, b string) int {
    m, n := len(a), len(b)
    dp := make([][]int, m+1)
    for i := range dp {
        dp[i] = make([]int, n+1)
    }
    for i := 1; i <= m; i++ {
        for j := 1; j <= n; j++ {
            if a[i-1] == b[j-1] {
                dp[i][j] = dp[i-1][j-1] + 1
            } else {
                dp[i][j] = max(dp[i-1][j], dp[i][j-1])
            }
        }
    }
    return dp[m][n]
}`

// TextPair is the snapshot of the string dynamic programming producers
type TextPair struct {
	A string
	B string
}

// Describe implements Snapshot
func (t *TextPair) Describe() string {
	return fmt.Sprintf("%q vs %q", t.A, t.B)
}

const lcsGap = 1.5

func lcsCellID(i, j int) string {
	return fmt.Sprintf("cell-%d-%d", i, j)
}

func rowLabelID(i int) string {
	return fmt.Sprintf("label-row-%d", i)
}

func colLabelID(j int) string {
	return fmt.Sprintf("label-col-%d", j)
}

func lcsHeight(v int) float64 {
	return 0.3 + float64(v)*0.8
}

// LCS fills the longest common subsequence table and walks back the answer
type LCS struct {
	opts Options
}

// NewLCS creates the longest common subsequence producer
func NewLCS(opts Options) Producer {
	return &LCS{opts: opts}
}

// Info implements Producer
func (p *LCS) Info() Info {
	return Info{
		Slug:        "lcs",
		Name:        "Longest Common Subsequence",
		Tier:        2,
		Category:    "Dynamic Programming",
		Description: "Builds a table of the longest common subsequence of every pair of prefixes, then backtracks the answer.",
		Code:        lcsCode,
	}
}

// Initialize implements Producer
func (p *LCS) Initialize() Snapshot {
	return &TextPair{A: "ABCBDAB", B: "BDCABA"}
}

// MapToVisual implements Producer
func (p *LCS) MapToVisual(s Snapshot) []scene.Entity {
	t, ok := s.(*TextPair)
	if !ok {
		return nil
	}
	m, n := len(t.A), len(t.B)
	centerX := float64(n-1) * lcsGap / 2
	centerZ := float64(m-1) * lcsGap / 2

	var out []scene.Entity
	for i := 0; i < m; i++ {
		out = append(out, scene.Entity{
			ID:       rowLabelID(i),
			Kind:     scene.KindSphere,
			Position: scene.Vec3{-3, 0.8, float64(i)*lcsGap - centerZ},
			State:    scene.StateDefault,
			Label:    string(t.A[i]),
		})
	}
	for j := 0; j < n; j++ {
		out = append(out, scene.Entity{
			ID:       colLabelID(j),
			Kind:     scene.KindSphere,
			Position: scene.Vec3{float64(j)*lcsGap - centerX, 0.8, -3},
			State:    scene.StateDefault,
			Label:    string(t.B[j]),
		})
	}
	for i := 0; i <= m; i++ {
		for j := 0; j <= n; j++ {
			base := i == 0 || j == 0
			e := scene.Entity{
				ID:       lcsCellID(i, j),
				Kind:     scene.KindBar,
				Position: scene.Vec3{float64(j)*lcsGap - centerX, 0, float64(i)*lcsGap - centerZ},
				Height:   0.1,
				State:    scene.StateDefault,
			}
			if base {
				e.Height = 0.05
				e.State = scene.StateVisited
			}
			out = append(out, e)
		}
	}
	return out
}

// Execute implements Producer
func (p *LCS) Execute(s Snapshot) step.Sequence {
	t, ok := s.(*TextPair)
	if !ok {
		return step.Empty()
	}
	a, b := t.A, t.B
	m, n := len(a), len(b)
	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}

	cell := func(i, j int, st scene.State, narrative string) step.Step {
		return step.ActivatePillar{Ref: step.Named(lcsCellID(i, j)), State: st, Narrative: narrative}
	}
	orb := func(id string, st scene.State, narrative string) step.Step {
		return step.ActivateOrb{Ref: step.Named(id), State: st, Narrative: narrative}
	}
	baseState := func(edge bool, fallback scene.State) scene.State {
		if edge {
			return scene.StateVisited
		}
		return fallback
	}

	const (
		lcsIntro = iota
		lcsFill
		lcsSummary
		lcsBacktrack
	)
	phase := lcsIntro
	i, j := 1, 1
	var path []byte
	var trail [][2]int

	return step.NewPump(func(emit step.Emit) bool {
		switch phase {
		case lcsIntro:
			emit(step.Delay{Duration: 1200, Narrative: fmt.Sprintf("Longest common subsequence of %q and %q", a, b)})
			emit(step.Delay{Duration: 700, Narrative: "Base case: empty prefixes have an LCS of 0"})
			emit(step.HighlightCode{Line: 3})
			emit(step.Delay{Duration: 900, Narrative: "Building the table row by row"})
			emit(step.HighlightCode{Line: 7})
			phase = lcsFill
			if m == 0 || n == 0 {
				phase = lcsSummary
			}

		case lcsFill:
			ca, cb := a[i-1], b[j-1]
			emit(cell(i, j, scene.StateActive, ""))
			emit(orb(rowLabelID(i-1), scene.StateActive, ""))
			emit(orb(colLabelID(j-1), scene.StateActive, fmt.Sprintf("Comparing '%c' (row %d) with '%c' (col %d)", ca, i, cb, j)))
			emit(step.Delay{Duration: 350})

			if ca == cb {
				dp[i][j] = dp[i-1][j-1] + 1
				emit(cell(i-1, j-1, scene.StateCompare, fmt.Sprintf("Match! Extending the diagonal: %d + 1", dp[i-1][j-1])))
				emit(step.HighlightCode{Line: 10})
				emit(step.Delay{Duration: 450})
				emit(step.UpdateHeight{ID: lcsCellID(i, j), Height: lcsHeight(dp[i][j]), Narrative: fmt.Sprintf("New LCS length: %d", dp[i][j])})
				emit(cell(i, j, scene.StateSorted, ""))
				emit(cell(i-1, j-1, baseState(i == 1 || j == 1, scene.StateSorted), ""))
			} else {
				top, left := dp[i-1][j], dp[i][j-1]
				dp[i][j] = max(top, left)
				emit(cell(i-1, j, scene.StateCompare, fmt.Sprintf("No match. Checking top: %d", top)))
				emit(step.Delay{Duration: 250})
				emit(cell(i, j-1, scene.StateCompare, fmt.Sprintf("Checking left: %d", left)))
				emit(step.HighlightCode{Line: 12})
				emit(step.Delay{Duration: 250})
				emit(step.UpdateHeight{ID: lcsCellID(i, j), Height: lcsHeight(dp[i][j]), Narrative: fmt.Sprintf("Inheriting max(%d, %d) = %d", top, left, dp[i][j])})
				emit(cell(i, j, scene.StateVisited, ""))
				emit(cell(i-1, j, baseState(i == 1, scene.StateDefault), ""))
				emit(cell(i, j-1, baseState(j == 1, scene.StateDefault), ""))
			}

			emit(orb(rowLabelID(i-1), scene.StateDefault, ""))
			emit(orb(colLabelID(j-1), scene.StateDefault, ""))
			emit(step.Delay{Duration: 100})

			j++
			if j > n {
				j = 1
				i++
			}
			if i > m {
				phase = lcsSummary
			}

		case lcsSummary:
			emit(step.Delay{Duration: 700})
			emit(cell(m, n, scene.StateActive, fmt.Sprintf("Table complete! LCS length: %d", dp[m][n])))
			emit(step.HighlightCode{Line: 16})
			emit(step.Delay{Duration: 1000})
			emit(step.Delay{Duration: 600, Narrative: "Backtracking to reconstruct the subsequence"})
			i, j = m, n
			phase = lcsBacktrack

		case lcsBacktrack:
			if i == 0 || j == 0 {
				for x, k := 0, len(path)-1; x < k; x, k = x+1, k-1 {
					path[x], path[k] = path[k], path[x]
				}
				emit(step.Complete{Narrative: fmt.Sprintf("LCS found: %q (length %d)", path, len(path))})
				for _, c := range trail {
					emit(cell(c[0], c[1], scene.StateSorted, ""))
				}
				return false
			}

			trail = append(trail, [2]int{i, j})
			emit(cell(i, j, scene.StateActive, ""))
			emit(step.Delay{Duration: 300})
			switch {
			case a[i-1] == b[j-1]:
				path = append(path, a[i-1])
				emit(orb(rowLabelID(i-1), scene.StateSorted, fmt.Sprintf("Found '%c' in the LCS", a[i-1])))
				emit(step.Delay{Duration: 400})
				i--
				j--
			case dp[i-1][j] > dp[i][j-1]:
				i--
			default:
				j--
			}
		}
		return true
	})
}
