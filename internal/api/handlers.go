package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/daovote/internal/domain"
	"github.com/trebuchet-org/daovote/internal/domain/models"
	"github.com/trebuchet-org/daovote/internal/usecase"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	})
}

// writeQueryError maps domain errors onto status codes
func (s *Server) writeQueryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNoSuchProposal), errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNotInitialized):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"is_healthy": true})
}

func (s *Server) handleGovernance(w http.ResponseWriter, r *http.Request) {
	status, err := s.governance.Run(r.Context())
	if err != nil {
		s.writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleProposals(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := usecase.ProposalFilter{
		Status: models.ProposalStatus(query.Get("status")),
		Query:  query.Get("q"),
	}
	if raw := query.Get("settled"); raw != "" {
		settled, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "settled must be true or false")
			return
		}
		filter.Settled = &settled
	}

	result, err := s.proposals.Run(r.Context(), filter)
	if err != nil {
		s.writeQueryError(w, err)
		return
	}
	if result.Proposals == nil {
		result.Proposals = []*usecase.ProposalView{}
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	result, err := s.proposal.Run(r.Context(), usecase.ShowProposalParams{ID: id})
	if err != nil {
		s.writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	voter, ok := parseAddress(w, r)
	if !ok {
		return
	}
	result, err := s.proposal.Run(r.Context(), usecase.ShowProposalParams{ID: id, Voter: &voter})
	if err != nil {
		s.writeQueryError(w, err)
		return
	}
	if result.Vote == nil {
		writeError(w, http.StatusNotFound, "no vote from "+voter.Hex())
		return
	}
	writeJSON(w, http.StatusOK, result.Vote)
}

func (s *Server) handleDepositor(w http.ResponseWriter, r *http.Request) {
	address, ok := parseAddress(w, r)
	if !ok {
		return
	}
	result, err := s.depositor.Run(r.Context(), usecase.ShowDepositorParams{Address: address})
	if err != nil {
		s.writeQueryError(w, err)
		return
	}
	if result.Votes == nil {
		result.Votes = []usecase.DepositorVote{}
	}
	writeJSON(w, http.StatusOK, result)
}

func parseID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid proposal id")
		return 0, false
	}
	return id, true
}

func parseAddress(w http.ResponseWriter, r *http.Request) (common.Address, bool) {
	raw := r.PathValue("address")
	if !common.IsHexAddress(raw) {
		writeError(w, http.StatusBadRequest, "invalid address")
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}
