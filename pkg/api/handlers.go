package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cardgrid/scramble/pkg/board"
	"github.com/cardgrid/scramble/pkg/boardfile"
	"github.com/cardgrid/scramble/pkg/log"
	"github.com/cardgrid/scramble/pkg/repositories"
	"github.com/cardgrid/scramble/pkg/repositories/models"
	"github.com/gorilla/mux"
)

var playerPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

func playerID(r *http.Request) (string, error) {
	player := mux.Vars(r)["player"]
	if !playerPattern.MatchString(player) {
		return "", fmt.Errorf("invalid player id %q", player)
	}
	return player, nil
}

func parseLocation(location string) (board.Position, error) {
	rowStr, colStr, ok := strings.Cut(location, ",")
	if !ok {
		return board.Position{}, fmt.Errorf("invalid location format %q", location)
	}
	row, err := strconv.Atoi(rowStr)
	if err != nil {
		return board.Position{}, fmt.Errorf("invalid row %q", rowStr)
	}
	col, err := strconv.Atoi(colStr)
	if err != nil {
		return board.Position{}, fmt.Errorf("invalid column %q", colStr)
	}
	return board.Position{Row: row, Col: col}, nil
}

func (s *APIServer) writeBoardState(w http.ResponseWriter, player string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, boardfile.Render(s.board.Look(player)))
}

func (s *APIServer) handleLook(w http.ResponseWriter, r *http.Request) {
	player, err := playerID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeBoardState(w, player)
}

func (s *APIServer) handleFlip(w http.ResponseWriter, r *http.Request) {
	player, err := playerID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	pos, err := parseLocation(mux.Vars(r)["location"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.board.Flip(r.Context(), player, pos)
	if err != nil {
		switch {
		case errors.Is(err, board.ErrInvalidPosition):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, board.ErrCancelled):
			// The client went away while waiting for the card.
			log.Debug("Flip by %s abandoned: %v", player, err)
		default:
			s.recordEvent(player, "flip", "failed", pos)
			http.Error(w, fmt.Sprintf("cannot flip this card: %v", err), http.StatusConflict)
		}
		return
	}

	s.recordEvent(player, "flip", res.Outcome.String(), pos)
	s.writeBoardState(w, player)
}

func (s *APIServer) handleReplace(w http.ResponseWriter, r *http.Request) {
	player, err := playerID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	vars := mux.Vars(r)

	count, err := s.board.Transform(vars["from"], vars["to"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	log.Debug("Replaced %d cards %q -> %q for %s", count, vars["from"], vars["to"], player)

	s.recordEvent(player, "replace", "replaced", board.Position{})
	s.writeBoardState(w, player)
}

func (s *APIServer) handleWatch(w http.ResponseWriter, r *http.Request) {
	player, err := playerID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.board.Watch(r.Context()); err != nil {
		// The client went away before anything changed.
		log.Debug("Watch by %s abandoned: %v", player, err)
		return
	}
	s.writeBoardState(w, player)
}

func (s *APIServer) handleStats(w http.ResponseWriter, r *http.Request) {
	player, err := playerID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	stats, err := s.repository.PlayerStats(r.Context(), player)
	if err != nil {
		if repositories.IsNotFound(err) {
			http.Error(w, "no events recorded for player", http.StatusNotFound)
			return
		}
		log.Error("Failed to load stats for %s: %v", player, err)
		http.Error(w, "failed to load stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		log.Error("Failed to encode stats: %v", err)
	}
}

func (s *APIServer) recordEvent(player, action, outcome string, pos board.Position) {
	if s.eventQueue == nil {
		return
	}
	event := &models.GameEvent{
		Player:    player,
		Action:    action,
		Outcome:   outcome,
		Row:       pos.Row,
		Col:       pos.Col,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := s.eventQueue.Enqueue(event); err != nil {
		log.Warn("Dropping game event for %s: %v", player, err)
	}
}
