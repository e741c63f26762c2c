package httpapi

import (
	"net/http"

	"github.com/TomHarkness/TransparentBalanceApp/internal/shared/models"
)

type balanceResponse struct {
	Status string `json:"status"`
	models.SafeBalance
}

type transactionsResponse struct {
	Status string `json:"status"`
	models.SafeTransactionList
}

func (r *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *Router) handleGetBalance(w http.ResponseWriter, req *http.Request) {
	sb, err := r.services.Balance.Get(req.Context())
	if err != nil {
		r.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Status: "success", SafeBalance: sb})
}

func (r *Router) handleRefreshBalance(w http.ResponseWriter, req *http.Request) {
	sb, err := r.services.Balance.Refresh(req.Context())
	if err != nil {
		r.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Status: "success", SafeBalance: sb})
}

func (r *Router) handleGetTransactions(w http.ResponseWriter, req *http.Request) {
	list, err := r.services.Transactions.Get(req.Context())
	if err != nil {
		r.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionsResponse{Status: "success", SafeTransactionList: list})
}
