// meta/meta.go
package meta

// GO_ROUTINES defines the number of goroutines running experiment games.
const GO_ROUTINES = 8

// GAMES defines the number of games per experiment trial.
const GAMES = 30

// MAX_TICKS defines the tick limit of a single run started from the command line.
const MAX_TICKS = 1000

// RESULTS_DIR defines where experiment CSV files are written.
const RESULTS_DIR = "results"
