package main

import (
	"fmt"

	"narrowphase/internal/algorithm"
	"narrowphase/internal/collision"
	"narrowphase/internal/shape"
	"narrowphase/internal/softbody"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"
)

// Layout
const (
	panelWidth = 220
	gridLeft   = panelWidth + 150
	gridTop    = 140
	cellSize   = 34
)

var (
	colorBgDark    = rl.NewColor(10, 10, 15, 255)
	colorBgPanel   = rl.NewColor(18, 18, 24, 245)
	colorBgElement = rl.NewColor(30, 30, 40, 255)
	colorBgHover   = rl.NewColor(40, 40, 55, 255)
	colorAccent    = rl.NewColor(108, 99, 255, 255)
	colorText      = rl.NewColor(230, 230, 235, 255)
	colorTextMuted = rl.NewColor(119, 119, 119, 255)
)

// kindColors assigns each algorithm kind a fixed cell color
var kindColors = map[algorithm.Kind]rl.Color{
	algorithm.KindEmpty:          rl.NewColor(28, 28, 34, 255),
	algorithm.KindSphereSphere:   rl.NewColor(230, 90, 90, 255),
	algorithm.KindSphereBox:      rl.NewColor(240, 150, 70, 255),
	algorithm.KindSphereTriangle: rl.NewColor(235, 205, 80, 255),
	algorithm.KindBoxBox:         rl.NewColor(150, 210, 90, 255),
	algorithm.KindConvexPlane:    rl.NewColor(80, 190, 170, 255),
	algorithm.KindConvexConvex:   rl.NewColor(80, 140, 230, 255),
	algorithm.KindConvexConcave:  rl.NewColor(140, 110, 230, 255),
	algorithm.KindCompound:       rl.NewColor(210, 110, 200, 255),
	softbody.KindSoftSoft:        rl.NewColor(250, 250, 250, 255),
	softbody.KindSoftRigid:       rl.NewColor(190, 190, 190, 255),
	softbody.KindSoftConcave:     rl.NewColor(130, 130, 130, 255),
}

func kindColor(k algorithm.Kind) rl.Color {
	if c, ok := kindColors[k]; ok {
		return c
	}
	return colorAccent
}

// options are the runtime toggles shown in the side panel
type options struct {
	SphereBox bool
	SoftBody  bool
	EPA       bool
}

// viewer holds the configuration built from the current options and its
// resolved matrix
type viewer struct {
	logger *zap.Logger
	opts   options
	types  []shape.Type
	cfg    *collision.Configuration
	cells  []collision.Entry
}

func newViewer(logger *zap.Logger, opts options) (*viewer, error) {
	v := &viewer{logger: logger, types: shape.Types()}
	if err := v.apply(opts); err != nil {
		return nil, err
	}
	return v, nil
}

// apply rebuilds the configuration when the options changed
func (v *viewer) apply(opts options) error {
	if v.cfg != nil && opts == v.opts {
		return nil
	}

	info := collision.DefaultConstructionInfo()
	info.EnableSphereBox = opts.SphereBox
	info.UseEpaPenetrationAlgorithm = opts.EPA
	info.DefaultMaxCollisionAlgorithmPoolSize = 64
	info.DefaultMaxPersistentManifoldPoolSize = 64

	var (
		cfg *collision.Configuration
		err error
	)
	if opts.SoftBody {
		cfg, err = softbody.NewConfiguration(info, collision.WithLogger(v.logger))
	} else {
		cfg, err = collision.New(info, collision.WithLogger(v.logger))
	}
	if err != nil {
		return fmt.Errorf("failed to rebuild configuration: %w", err)
	}

	v.close()
	v.cfg = cfg
	v.opts = opts
	v.cells = cfg.Matrix()
	return nil
}

// cell returns the entry for row a, column b
func (v *viewer) cell(row, col int) collision.Entry {
	return v.cells[row*len(v.types)+col]
}

// cellAt maps a screen position to a grid cell
func (v *viewer) cellAt(pos rl.Vector2) (row, col int, ok bool) {
	if pos.X < gridLeft || pos.Y < gridTop {
		return 0, 0, false
	}
	col = int(pos.X-gridLeft) / cellSize
	row = int(pos.Y-gridTop) / cellSize
	if row >= len(v.types) || col >= len(v.types) {
		return 0, 0, false
	}
	return row, col, true
}

func (v *viewer) describe(e collision.Entry) string {
	s := fmt.Sprintf("%s x %s -> %s", e.A, e.B, e.Kind)
	if e.Swapped {
		s += " (swapped)"
	}
	if e.RuleSet == "" {
		return s + " [fallback]"
	}
	return s + " [" + e.RuleSet + "]"
}

func (v *viewer) close() {
	if v.cfg != nil {
		v.cfg.Close()
		v.cfg = nil
	}
}
