package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"connectk/pkg/bench"
	"connectk/pkg/connectk"
	"connectk/pkg/engine"

	"github.com/muesli/termenv"
)

func main() {
	var (
		benchMode  = flag.Bool("bench", false, "run an engine-vs-engine benchmark instead of an interactive game")
		games      = flag.Int("games", 20, "number of benchmark games")
		workers    = flag.Int("workers", 2, "benchmark worker goroutines")
		iterations = flag.Int("iterations", 3000, "search iterations per move")
		moveTime   = flag.Int("movetime", 0, "search time per move in milliseconds, overrides -iterations when set")
		seed       = flag.Int64("seed", 0, "random seed, 0 picks one from the clock")
	)
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	if *benchMode {
		runBench(*games, *workers, *iterations, *moveTime, *seed)
		return
	}

	runInteractive(*iterations, *moveTime, *seed)
}

func runInteractive(iterations, moveTime int, seed int64) {
	in := bufio.NewScanner(os.Stdin)
	out := termenv.NewOutput(os.Stdout)

	fmt.Println()
	height := promptInt(in, "How tall would you like your board to be? ", 1, 10)
	width := promptInt(in, "How wide would you like your board to be? ", 1, 16)
	winLength := promptInt(in, "How many in a row to win? ", 1, max(width, height))
	humanFirst := promptYesNo(in, "Would you like to go first? ")

	eng, err := engine.New(engine.Config{
		Width:      width,
		Height:     height,
		WinLength:  winLength,
		Iterations: iterations,
		MoveTime:   moveTime,
		Seed:       seed,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	humanSide := connectk.Red
	if !humanFirst {
		humanSide = connectk.Yellow
	}

	for eng.Result() == engine.Ongoing {
		printBoard(out, eng.Position())

		var move connectk.Move
		if eng.Position().Turn() == humanSide {
			move = promptMove(in, eng.Position())
		} else {
			fmt.Println("Thinking...")
			result, err := eng.Search(context.Background())
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			move = result.Best
			fmt.Printf("Engine plays column %d  (eval %.2f, %d iterations, depth %d, %dms)\n",
				move, result.Eval, result.Cycles, result.Depth, result.TimeMs)
		}

		if err := eng.ApplyMove(move); err != nil {
			fmt.Println(err)
		}
	}

	printBoard(out, eng.Position())
	switch eng.Result() {
	case engine.Draw:
		fmt.Println("It's a draw.")
	case engine.RedWin, engine.YellowWin:
		if eng.Position().Winner() == humanSide {
			fmt.Println("You win!")
		} else {
			fmt.Println("The engine wins.")
		}
	}
}

// printBoard renders the board bottom row last, pieces colored when the
// terminal supports it
func printBoard(out *termenv.Output, pos *connectk.Position) {
	red := out.String("X").Foreground(out.Color("1")).Bold()
	yellow := out.String("O").Foreground(out.Color("3")).Bold()

	fmt.Println()
	for row := pos.Height() - 1; row >= 0; row-- {
		for col := 0; col < pos.Width(); col++ {
			fmt.Print("|")
			switch pos.At(col, row) {
			case connectk.Red:
				fmt.Print(red.String())
			case connectk.Yellow:
				fmt.Print(yellow.String())
			default:
				fmt.Print(" ")
			}
		}
		fmt.Println("|")
	}
	for col := 0; col < pos.Width(); col++ {
		fmt.Printf(" %d", col%10)
	}
	fmt.Println()
}

func promptMove(in *bufio.Scanner, pos *connectk.Position) connectk.Move {
	for {
		fmt.Print("Your move (column): ")
		if !in.Scan() {
			os.Exit(0)
		}
		n, err := strconv.Atoi(strings.TrimSpace(in.Text()))
		if err != nil || n < 0 || n >= pos.Width() || !pos.CanPlay(connectk.Move(n)) {
			fmt.Println("Invalid column. Please retry.")
			continue
		}
		return connectk.Move(n)
	}
}

func promptInt(in *bufio.Scanner, prompt string, lo, hi int) int {
	for {
		fmt.Print(prompt)
		if !in.Scan() {
			os.Exit(0)
		}
		n, err := strconv.Atoi(strings.TrimSpace(in.Text()))
		if err != nil || n < lo || n > hi {
			fmt.Printf("Invalid input. Please enter a number between %d and %d.\n", lo, hi)
			continue
		}
		return n
	}
}

func promptYesNo(in *bufio.Scanner, prompt string) bool {
	fmt.Print(prompt)
	if !in.Scan() {
		os.Exit(0)
	}
	answer := strings.TrimSpace(in.Text())
	return len(answer) > 0 && strings.ToUpper(answer[:1]) == "Y"
}

type benchListener struct {
	out *termenv.Output
}

func (b benchListener) OnMoveMade(bench.WorkerInfo) {}

func (b benchListener) OnFinishedGame(info bench.WorkerInfo) {
	fmt.Printf("worker %d: game %d/%d done (P1 %d, P2 %d, draws %d)\n",
		info.WorkerID, info.FinishedGames, info.NGames, info.P1Wins, info.P2Wins, info.Draws)
}

func (b benchListener) OnFinishedWork(info bench.WorkerInfo) {
	fmt.Printf("worker %d finished\n", info.WorkerID)
}

func (b benchListener) Summary(info bench.SummaryInfo) {
	bold := func(s string) string { return b.out.String(s).Bold().String() }

	fmt.Println()
	fmt.Println(bold("Benchmark summary"))
	fmt.Printf("  games:   %d (workers: %d)\n", info.TotalGames, info.Workers)
	fmt.Printf("  %s: %d wins\n", info.P1Name, info.P1Wins)
	fmt.Printf("  %s: %d wins\n", info.P2Name, info.P2Wins)
	fmt.Printf("  draws:   %d\n", info.Draws)
	fmt.Printf("  first mover won %d, second mover won %d\n",
		info.FirstToMoveWins, info.SecondToMoveWins)
}

func runBench(games, workers, iterations, moveTime int, seed int64) {
	base := engine.Config{
		Width:      7,
		Height:     6,
		WinLength:  4,
		Iterations: iterations,
		MoveTime:   moveTime,
		Seed:       seed,
	}

	// Same strength on both sides but different seeds, a sanity check
	// that neither color has a systematic edge beyond moving first
	cfg2 := base
	cfg2.Seed = seed + 1

	arena := bench.NewArena(base, cfg2)
	arena.NGames = games
	arena.NWorkers = workers

	if err := arena.Run(benchListener{out: termenv.NewOutput(os.Stdout)}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
