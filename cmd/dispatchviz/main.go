package main

import (
	"fmt"
	"os"

	"narrowphase/internal/algorithm"
	"narrowphase/internal/logging"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	verbose := pflag.BoolP("verbose", "v", false, "Enable verbose logging")
	pflag.Parse()

	logger, err := logging.New(*verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	v, err := newViewer(logger, options{EPA: true})
	if err != nil {
		logger.Fatal("failed to build configuration", zap.Error(err))
	}
	defer v.close()

	run(v)
}

func run(v *viewer) {
	n := int32(len(v.types))
	width := int32(gridLeft) + n*cellSize + 40
	height := int32(gridTop) + n*cellSize + 80

	rl.SetConfigFlags(rl.FlagWindowHighdpi)
	rl.InitWindow(width, height, "Narrow-phase dispatch matrix")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	initStyle()

	for !rl.WindowShouldClose() {
		opts := drawFrame(v)
		if err := v.apply(opts); err != nil {
			v.logger.Error("rebuild failed", zap.Error(err))
		}
	}
}

func initStyle() {
	gui.SetStyle(gui.DEFAULT, gui.BACKGROUND_COLOR, gui.NewColorPropertyValue(colorBgDark))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_NORMAL, gui.NewColorPropertyValue(colorBgElement))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_FOCUSED, gui.NewColorPropertyValue(colorBgHover))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_PRESSED, gui.NewColorPropertyValue(colorAccent))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_NORMAL, gui.NewColorPropertyValue(colorTextMuted))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_FOCUSED, gui.NewColorPropertyValue(colorText))
	gui.SetStyle(gui.DEFAULT, gui.BORDER_COLOR_FOCUSED, gui.NewColorPropertyValue(colorAccent))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_SIZE, 15)
}

// drawFrame draws one frame and returns the toggles as the user left them
func drawFrame(v *viewer) options {
	rl.BeginDrawing()
	defer rl.EndDrawing()
	rl.ClearBackground(colorBgDark)

	opts := drawPanel(v)
	drawGrid(v)
	return opts
}

func drawPanel(v *viewer) options {
	rl.DrawRectangle(0, 0, panelWidth, int32(rl.GetScreenHeight()), colorBgPanel)
	rl.DrawText("RULES", 16, 16, 18, colorText)

	opts := v.opts
	opts.SphereBox = gui.CheckBox(rl.Rectangle{X: 16, Y: 52, Width: 18, Height: 18}, "Sphere-box rule", opts.SphereBox)
	opts.SoftBody = gui.CheckBox(rl.Rectangle{X: 16, Y: 80, Width: 18, Height: 18}, "Soft body rules", opts.SoftBody)
	opts.EPA = gui.CheckBox(rl.Rectangle{X: 16, Y: 108, Width: 18, Height: 18}, "EPA solver", opts.EPA)

	y := int32(150)
	rl.DrawText(fmt.Sprintf("block size: %d B", v.cfg.RequiredPoolBlockSize()), 16, y, 15, colorTextMuted)
	y += 20
	rl.DrawText("solver: "+v.cfg.PenetrationSolver().Name(), 16, y, 15, colorTextMuted)
	y += 36

	rl.DrawText("ALGORITHMS", 16, y, 15, colorText)
	y += 24
	for _, k := range v.cfg.Kinds() {
		rl.DrawRectangle(16, y, 14, 14, kindColor(k))
		size, _ := algorithm.Footprint(k)
		rl.DrawText(fmt.Sprintf("%s (%d)", k, size), 38, y, 14, colorTextMuted)
		y += 20
	}
	return opts
}

func drawGrid(v *viewer) {
	for i, t := range v.types {
		offset := int32(i*cellSize) + 10
		rl.DrawText(t.String(), gridLeft-rl.MeasureText(t.String(), 13)-8, gridTop+offset, 13, colorTextMuted)
		rl.DrawTextPro(rl.GetFontDefault(), t.String(),
			rl.Vector2{X: float32(gridLeft + offset), Y: gridTop - 8}, rl.Vector2{}, -60, 13, 1, colorTextMuted)
	}

	for row := range v.types {
		for col := range v.types {
			e := v.cell(row, col)
			x := int32(gridLeft + col*cellSize)
			y := int32(gridTop + row*cellSize)
			rl.DrawRectangle(x+1, y+1, cellSize-2, cellSize-2, kindColor(e.Kind))
			if e.Swapped {
				rl.DrawTriangle(
					rl.Vector2{X: float32(x + cellSize - 1), Y: float32(y + 1)},
					rl.Vector2{X: float32(x + cellSize/2), Y: float32(y + 1)},
					rl.Vector2{X: float32(x + cellSize - 1), Y: float32(y + cellSize/2)},
					colorBgDark,
				)
			}
		}
	}

	if row, col, ok := v.cellAt(rl.GetMousePosition()); ok {
		x := int32(gridLeft + col*cellSize)
		y := int32(gridTop + row*cellSize)
		rl.DrawRectangleLines(x, y, cellSize, cellSize, colorAccent)
		rl.DrawText(v.describe(v.cell(row, col)), gridLeft, int32(rl.GetScreenHeight())-40, 18, colorText)
	}
}
