package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	appAccount "github.com/shopcore/shopcore/internal/application/account"
	appCart "github.com/shopcore/shopcore/internal/application/cart"
	appInventory "github.com/shopcore/shopcore/internal/application/inventory"
	appProduct "github.com/shopcore/shopcore/internal/application/product"
	domainActor "github.com/shopcore/shopcore/internal/domain/actor"
	"github.com/shopcore/shopcore/internal/domain/authz"
	domainCart "github.com/shopcore/shopcore/internal/domain/cart"
	domainProduct "github.com/shopcore/shopcore/internal/domain/product"
)

// Handler is thin glue: it resolves the verified actor from the request,
// calls the application services, and maps typed failures to status codes.
type Handler struct {
	products *appProduct.Service
	carts    *appCart.Service
	accounts *appAccount.Service
}

func NewHandler(products *appProduct.Service, carts *appCart.Service, accounts *appAccount.Service) *Handler {
	return &Handler{
		products: products,
		carts:    carts,
		accounts: accounts,
	}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /products", h.handleListProducts)
	mux.HandleFunc("GET /products/{id}", h.handleGetProduct)
	mux.HandleFunc("POST /products", h.handleCreateProduct)
	mux.HandleFunc("PUT /products/{id}", h.handleUpdateProduct)
	mux.HandleFunc("DELETE /products/{id}", h.handleDeleteProduct)

	mux.HandleFunc("POST /carts", h.handleCreateCart)
	mux.HandleFunc("GET /carts/{id}", h.handleGetCart)
	mux.HandleFunc("DELETE /carts/{id}", h.handleClearCart)
	mux.HandleFunc("PUT /carts/{id}/products/{pid}", h.handleMutateCartItem)
	mux.HandleFunc("DELETE /carts/{id}/products/{pid}", h.handleRemoveCartItem)
	mux.HandleFunc("POST /carts/{id}/purchase", h.handlePurchase)
	mux.HandleFunc("GET /carts/{id}/stock", h.handleVerifyStock)

	mux.HandleFunc("GET /accounts", h.handleListAccounts)
	mux.HandleFunc("PUT /accounts/{id}/role", h.handleChangeRole)
	mux.HandleFunc("DELETE /accounts/{id}", h.handleDeleteAccount)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}

// actorFrom reads the identity the authentication collaborator attached to
// the request. No identity means the request never passed verification.
func actorFrom(r *http.Request) (*domainActor.Actor, error) {
	id := r.Header.Get("X-Actor-ID")
	if id == "" {
		return nil, authz.ErrUnauthenticated
	}
	role := domainActor.Role(r.Header.Get("X-Actor-Role"))
	if !role.Valid() {
		return nil, authz.ErrUnauthenticated
	}
	return &domainActor.Actor{
		ID:     id,
		Role:   role,
		CartID: r.Header.Get("X-Cart-ID"),
	}, nil
}

type productResponse struct {
	ID          string  `json:"id"`
	OwnerID     string  `json:"owner_id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Code        string  `json:"code"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Active      bool    `json:"active"`
}

func toProductResponse(p *domainProduct.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		Title:       p.Title,
		Description: p.Description,
		Code:        p.Code,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		Active:      p.Active,
	}
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	if _, err := actorFrom(r); err != nil {
		writeDomainError(w, err)
		return
	}

	opts := domainProduct.ListOptions{
		Page:     intQuery(r, "page", 1),
		Limit:    intQuery(r, "limit", 10),
		Category: r.URL.Query().Get("category"),
	}
	page, err := h.products.List(r.Context(), opts)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]productResponse, 0, len(page.Products))
	for _, p := range page.Products {
		items = append(items, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"products":     items,
		"total":        page.Total,
		"current_page": page.CurrentPage,
		"total_pages":  page.TotalPages,
	})
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	if _, err := actorFrom(r); err != nil {
		writeDomainError(w, err)
		return
	}
	p, err := h.products.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

type createProductRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Code        string  `json:"code"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	act, err := actorFrom(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p, err := h.products.Create(r.Context(), act, appProduct.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Code:        req.Code,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

type updateProductRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price"`
	Code        *string  `json:"code"`
	Active      *bool    `json:"active"`
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	act, err := actorFrom(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var req updateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p, err := h.products.Update(r.Context(), act, r.PathValue("id"), domainProduct.Update{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Code:        req.Code,
		Active:      req.Active,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	act, err := actorFrom(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.products.Delete(r.Context(), act, r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleCreateCart(w http.ResponseWriter, r *http.Request) {
	act, err := actorFrom(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	c, err := h.carts.Create(r.Context(), act)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"cart_id": c.ID})
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	act, err := actorFrom(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	summary, err := h.carts.Get(r.Context(), act, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	act, err := actorFrom(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	summary, err := h.carts.Clear(r.Context(), act, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

type mutateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) handleMutateCartItem(w http.ResponseWriter, r *http.Request) {
	act, err := actorFrom(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var req mutateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	summary, err := h.carts.MutateItem(r.Context(), act, r.PathValue("id"), r.PathValue("pid"), req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func (h *Handler) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	act, err := actorFrom(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	summary, err := h.carts.MutateItem(r.Context(), act, r.PathValue("id"), r.PathValue("pid"), 0)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func (h *Handler) handlePurchase(w http.ResponseWriter, r *http.Request) {
	act, err := actorFrom(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	result, err := h.carts.Purchase(r.Context(), act, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleVerifyStock(w http.ResponseWriter, r *http.Request) {
	act, err := actorFrom(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	checks, err := h.carts.VerifyStock(r.Context(), act, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": checks})
}

type accountResponse struct {
	ID     string `json:"id"`
	Role   string `json:"role"`
	CartID string `json:"cart_id,omitempty"`
}

func (h *Handler) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	act, err := actorFrom(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	actors, err := h.accounts.ListAll(r.Context(), act)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]accountResponse, 0, len(actors))
	for _, a := range actors {
		out = append(out, accountResponse{ID: a.ID, Role: string(a.Role), CartID: a.CartID})
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": out})
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	act, err := actorFrom(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var req changeRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	updated, err := h.accounts.ChangeRole(r.Context(), act, r.PathValue("id"), domainActor.Role(req.Role))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse{ID: updated.ID, Role: string(updated.Role), CartID: updated.CartID})
}

func (h *Handler) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	act, err := actorFrom(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.accounts.Delete(r.Context(), act, r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type summaryItemResponse struct {
	ProductID   string           `json:"product_id"`
	Quantity    int              `json:"quantity"`
	Product     *productResponse `json:"product,omitempty"`
	Unavailable bool             `json:"unavailable,omitempty"`
	LineTotal   float64          `json:"line_total"`
}

type summaryResponse struct {
	CartID     string                `json:"cart_id"`
	Items      []summaryItemResponse `json:"items"`
	TotalItems int                   `json:"total_items"`
	TotalPrice float64               `json:"total_price"`
}

func toSummaryResponse(s *domainCart.Summary) summaryResponse {
	out := summaryResponse{
		CartID:     s.CartID,
		Items:      make([]summaryItemResponse, 0, len(s.Items)),
		TotalItems: s.TotalItems,
		TotalPrice: s.TotalPrice,
	}
	for _, it := range s.Items {
		item := summaryItemResponse{
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			Unavailable: it.Unavailable,
			LineTotal:   it.LineTotal,
		}
		if it.Product != nil {
			pr := toProductResponse(it.Product)
			item.Product = &pr
		}
		out.Items = append(out.Items, item)
	}
	return out
}

func intQuery(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	var n int
	for _, c := range v {
		if c < '0' || c > '9' {
			return def
		}
		n = n*10 + int(c-'0')
	}
	if n == 0 {
		return def
	}
	return n
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeDomainError(w http.ResponseWriter, err error) {
	var shortfall *domainProduct.StockShortfallError

	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, err)
	case errors.Is(err, authz.ErrDenied),
		errors.Is(err, domainCart.ErrNotOwner):
		writeError(w, http.StatusForbidden, err)
	case errors.Is(err, domainCart.ErrNotFound),
		errors.Is(err, domainProduct.ErrNotFound),
		errors.Is(err, domainActor.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.As(err, &shortfall):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":         err.Error(),
			"current_stock": shortfall.CurrentStock,
		})
	case errors.Is(err, domainProduct.ErrInsufficientStock):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, domainCart.ErrConflict):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, domainCart.ErrInvalidQuantity),
		errors.Is(err, appInventory.ErrInvalidQuantity),
		errors.Is(err, domainProduct.ErrInvalidPrice),
		errors.Is(err, domainProduct.ErrInvalidStock),
		errors.Is(err, domainProduct.ErrMissingFields),
		errors.Is(err, domainActor.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, domainProduct.ErrCodeExists):
		writeError(w, http.StatusConflict, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
