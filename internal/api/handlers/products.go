package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/infinityvet/infinityvet/internal/api/dto"
	"github.com/infinityvet/infinityvet/internal/api/validation"
	"github.com/infinityvet/infinityvet/internal/database/models"
	"github.com/infinityvet/infinityvet/internal/plan"
	"github.com/infinityvet/infinityvet/internal/tenant"
	"gorm.io/gorm"
)

type ProductHandler struct {
	db *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

type ProductRequest struct {
	Nome          string  `json:"nome"`
	Categoria     string  `json:"categoria,omitempty"`
	Quantidade    float64 `json:"quantidade"`
	Unidade       string  `json:"unidade,omitempty"`
	EstoqueMinimo float64 `json:"estoque_minimo"`
	Validade      string  `json:"validade,omitempty"` // YYYY-MM-DD
	Fabricante    string  `json:"fabricante,omitempty"`
	Indicacoes    string  `json:"indicacoes,omitempty"`
}

func (r ProductRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Nome == "" {
		errors["nome"] = "Nome is required"
	}
	if r.Quantidade < 0 {
		errors["quantidade"] = "Quantidade cannot be negative"
	}
	if r.EstoqueMinimo < 0 {
		errors["estoque_minimo"] = "Estoque minimo cannot be negative"
	}
	if r.Validade != "" && !validation.IsValidDate(r.Validade) {
		errors["validade"] = "Invalid date, expected YYYY-MM-DD"
	}
	return errors
}

// ProductResponse carries the derived low-stock flag alongside the record.
type ProductResponse struct {
	models.Product
	EstoqueBaixo bool `json:"estoque_baixo"`
}

func productToResponse(p models.Product) ProductResponse {
	return ProductResponse{Product: p, EstoqueBaixo: p.EstoqueBaixo()}
}

// List handles GET /api/v1/products. Filters: ?q=, ?categoria=,
// ?estoque_baixo=true.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := h.db.Model(&models.Product{}).Scopes(tenant.Scoped(r.Context()))

	if q := r.URL.Query().Get("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("nome LIKE ? OR fabricante LIKE ?", like, like)
	}
	if cat := r.URL.Query().Get("categoria"); cat != "" {
		query = query.Where("categoria = ?", cat)
	}

	var products []models.Product
	if err := query.Order("created_at DESC").Find(&products).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list products"})
		return
	}

	lowOnly := r.URL.Query().Get("estoque_baixo") == "true"

	responses := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		resp := productToResponse(p)
		if lowOnly && !resp.EstoqueBaixo {
			continue
		}
		responses = append(responses, resp)
	}

	writeJSON(w, http.StatusOK, dto.ListResponse{Data: responses, Total: int64(len(responses))})
}

// Create handles POST /api/v1/products. Enforces the plan's product ceiling.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID := tenant.OrganizationID(r.Context())

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	var org models.Organization
	if err := h.db.First(&org, orgID).Error; err != nil {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Organization not found"})
		return
	}

	var count int64
	if err := h.db.Model(&models.Product{}).Scopes(tenant.Scope(orgID)).Count(&count).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to count products"})
		return
	}
	if !plan.Allows(org.LimiteProdutos, count) {
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Product limit reached for current plan"})
		return
	}

	product := models.Product{
		OrganizationID: orgID,
		Nome:           req.Nome,
		Categoria:      req.Categoria,
		Quantidade:     req.Quantidade,
		Unidade:        req.Unidade,
		EstoqueMinimo:  req.EstoqueMinimo,
		Fabricante:     req.Fabricante,
		Indicacoes:     req.Indicacoes,
	}
	if req.Validade != "" {
		d, _ := validation.ParseDate(req.Validade)
		product.Validade = &d
	}

	if err := h.db.Create(&product).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create product"})
		return
	}

	writeJSON(w, http.StatusCreated, productToResponse(product))
}

// Get handles GET /api/v1/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid product ID"})
		return
	}

	var product models.Product
	if err := h.db.Scopes(tenant.Scoped(r.Context())).First(&product, productID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Product not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get product"})
		return
	}

	writeJSON(w, http.StatusOK, productToResponse(product))
}

// Update handles PUT /api/v1/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid product ID"})
		return
	}

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	var product models.Product
	if err := h.db.Scopes(tenant.Scoped(r.Context())).First(&product, productID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Product not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get product"})
		return
	}

	product.Nome = req.Nome
	product.Categoria = req.Categoria
	product.Quantidade = req.Quantidade
	product.Unidade = req.Unidade
	product.EstoqueMinimo = req.EstoqueMinimo
	product.Fabricante = req.Fabricante
	product.Indicacoes = req.Indicacoes
	product.Validade = nil
	if req.Validade != "" {
		d, _ := validation.ParseDate(req.Validade)
		product.Validade = &d
	}

	if err := h.db.Save(&product).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update product"})
		return
	}

	writeJSON(w, http.StatusOK, productToResponse(product))
}

// Delete handles DELETE /api/v1/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid product ID"})
		return
	}

	result := h.db.Scopes(tenant.Scoped(r.Context())).Delete(&models.Product{}, productID)
	if result.Error != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete product"})
		return
	}
	if result.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Product not found"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Product deleted"})
}
