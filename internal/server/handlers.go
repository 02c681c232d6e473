package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Mohsinsiddi/w3wrap/internal/wrapper"
)

const requestIDHeader = "X-Request-Id"

type depositResponse struct {
	FlowID    string   `json:"flow_id"`
	WrappedID string   `json:"wrapped_id"`
	TxHash    string   `json:"tx_hash"`
	TokenURI  string   `json:"token_uri,omitempty"`
	MintedID  string   `json:"minted_id,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

type withdrawResponse struct {
	FlowID string `json:"flow_id"`
	TxHash string `json:"tx_hash"`
}

type uriResponse struct {
	TokenID string `json:"token_id"`
	URI     string `json:"uri"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Stage     string `json:"stage,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct{ Wrapper, Owner string }{
		Wrapper: s.ops.WrapperAddress().Hex(),
		Owner:   s.ops.Owner().Hex(),
	}
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger(r).WithError(err).Error("rendering index")
	}
}

func (s *Server) handleDepositERC20(w http.ResponseWriter, r *http.Request) {
	token, err := wrapper.ParseAddress(r.FormValue("erc20-address"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	amount, err := wrapper.ParseAmount(r.FormValue("erc20-amount"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := wrapper.ParseData(r.FormValue("erc20-data"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	done := s.metrics.track(wrapper.OpDepositERC20)
	res, err := s.ops.DepositERC20(r.Context(), wrapper.ERC20Deposit{Token: token, Amount: amount, Data: data})
	done(status(err))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDepositResponse(res))
}

func (s *Server) handleWithdrawERC20(w http.ResponseWriter, r *http.Request) {
	token, err := wrapper.ParseAddress(r.FormValue("withdrawErc20Address"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	amount, err := wrapper.ParseAmount(r.FormValue("withdrawErc20Amount"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	done := s.metrics.track(wrapper.OpWithdrawERC20)
	res, err := s.ops.WithdrawERC20(r.Context(), token, amount)
	done(status(err))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, withdrawResponse{FlowID: res.FlowID, TxHash: res.TxHash.Hex()})
}

func (s *Server) handleDepositERC721(w http.ResponseWriter, r *http.Request) {
	token, err := wrapper.ParseAddress(r.FormValue("erc721-address"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tokenID, err := wrapper.ParseAmount(r.FormValue("erc721-tokenId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := wrapper.ParseData(r.FormValue("erc721-data"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	done := s.metrics.track(wrapper.OpDepositERC721)
	res, err := s.ops.DepositERC721(r.Context(), wrapper.ERC721Deposit{
		Token:       token,
		TokenID:     tokenID,
		Data:        data,
		MetadataURI: r.FormValue("erc721-metadata"),
	})
	done(status(err))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDepositResponse(res))
}

func (s *Server) handleWithdrawERC721(w http.ResponseWriter, r *http.Request) {
	token, err := wrapper.ParseAddress(r.FormValue("withdrawErc721Address"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tokenID, err := wrapper.ParseAmount(r.FormValue("withdrawErc721TokenId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	done := s.metrics.track(wrapper.OpWithdrawERC721)
	res, err := s.ops.WithdrawERC721(r.Context(), token, tokenID)
	done(status(err))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, withdrawResponse{FlowID: res.FlowID, TxHash: res.TxHash.Hex()})
}

func (s *Server) handleViewURI(w http.ResponseWriter, r *http.Request) {
	raw, ok := mux.Vars(r)["id"]
	if !ok {
		raw = r.FormValue("token-id")
	}
	id, err := wrapper.ParseAmount(raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	done := s.metrics.track(wrapper.OpViewURI)
	uri, err := s.ops.ViewURI(r.Context(), id)
	done(status(err))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, uriResponse{TokenID: id.String(), URI: uri})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		Status    string  `json:"status"`
		LatencyMs float64 `json:"latency_ms"`
		Error     string  `json:"error,omitempty"`
	}{Status: "healthy"}

	code := http.StatusOK
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		start := time.Now()
		if err := s.health(ctx); err != nil {
			resp.Status = "degraded"
			resp.Error = err.Error()
			code = http.StatusServiceUnavailable
		}
		resp.LatencyMs = float64(time.Since(start).Microseconds()) / 1000.0
	}
	writeJSON(w, code, resp)
}

// writeError maps flow errors to HTTP: bad input is the caller's fault, any
// other failure came from the chain or a contract.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusBadGateway
	if errors.Is(err, wrapper.ErrInvalidInput) {
		code = http.StatusBadRequest
	}
	resp := errorResponse{Error: err.Error(), RequestID: r.Header.Get(requestIDHeader)}
	var se *wrapper.StepError
	if errors.As(err, &se) {
		resp.Stage = se.Stage.String()
	}
	s.logger(r).WithError(err).WithField("status", code).Warn("request failed")
	writeJSON(w, code, resp)
}

func (s *Server) logger(r *http.Request) *logrus.Entry {
	return s.log.WithFields(logrus.Fields{
		"request_id": r.Header.Get(requestIDHeader),
		"path":       r.URL.Path,
	})
}

func toDepositResponse(res *wrapper.DepositResult) depositResponse {
	out := depositResponse{
		FlowID:    res.FlowID,
		WrappedID: res.WrappedID.String(),
		TxHash:    res.TxHash.Hex(),
		TokenURI:  res.TokenURI,
		Warnings:  res.Warnings,
	}
	if res.MintedID != nil {
		out.MintedID = res.MintedID.String()
	}
	return out
}

func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, wrapper.ErrInvalidInput):
		return "invalid"
	default:
		return "failed"
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}
