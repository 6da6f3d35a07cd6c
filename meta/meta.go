// meta/meta.go
package meta

// EXAMPLE_SEARCH_SIZE is the search budget of the diagnostic self-play games.
const EXAMPLE_SEARCH_SIZE = 20

// ARENA_GAMES is the number of match sets, and games per set, in each arena orientation.
const ARENA_GAMES = 10

// ACCEPT_MARGIN is the average candidate reward the arena must strictly exceed.
const ACCEPT_MARGIN = 0.1

// SELF_PLAY_TEMPERATURE is the move selection temperature of self-play workers.
const SELF_PLAY_TEMPERATURE = 1.0

// C_PUCT is the exploration constant of the tree search.
const C_PUCT = 1.5

// MAX_TURNS caps engine games; a game reaching it is scored as a draw.
const MAX_TURNS = 300
