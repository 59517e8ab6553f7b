package device

import "sort"

type (
	// Hub holds the boards the process controls, keyed by a small
	// numeric id. Boards are loaded once at startup, before the server
	// takes requests.
	Hub struct {
		boards map[int]*Board
	}
)

func NewHub() *Hub {
	return &Hub{
		boards: make(map[int]*Board),
	}
}

func (h *Hub) Load(id int, board *Board) {
	h.boards[id] = board
}

func (h *Hub) List() []int {
	out := make([]int, 0, len(h.boards))
	for id := range h.boards {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

func (h *Hub) Get(id int) *Board {
	return h.boards[id]
}
