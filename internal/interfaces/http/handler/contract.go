package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	contractapp "github.com/sikontrak/backend/internal/application/contract"
)

// ContractHandler handles contract-related API endpoints
type ContractHandler struct {
	BaseHandler
	contractService *contractapp.ContractService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(contractService *contractapp.ContractService) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
	}
}

// TerminateContractRequest represents a request to terminate a contract early
// @Description Request body for terminating a contract
type TerminateContractRequest struct {
	Note string `json:"note" binding:"required,min=1,max=500" example:"Terminated by mutual agreement"`
}

// Create godoc
// @ID           createContract
// @Summary      Create a new contract
// @Description  Register a contract with its value, period and optional termin schedule
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        request body contractapp.CreateContractRequest true "Contract creation request"
// @Success      201 {object} APIResponse[contractapp.ContractResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /contracts [post]
func (h *ContractHandler) Create(c *gin.Context) {
	var req contractapp.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contr, err := h.contractService.CreateContract(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, contr)
}

// GetByID godoc
// @ID           getContractById
// @Summary      Get contract by ID
// @Description  Retrieve a contract with its parsed termin schedule, next due termin and duration
// @Tags         contracts
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Success      200 {object} APIResponse[contractapp.ContractResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /contracts/{id} [get]
func (h *ContractHandler) GetByID(c *gin.Context) {
	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	contr, err := h.contractService.GetContractByID(c.Request.Context(), contractID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, contr)
}

// List godoc
// @ID           listContracts
// @Summary      List contracts
// @Description  Retrieve a paginated list of contracts with optional filtering
// @Tags         contracts
// @Produce      json
// @Param        search query string false "Search term (contract number, customer name, description)"
// @Param        status query string false "Contract status" Enums(ACTIVE, COMPLETED, TERMINATED)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(created_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]contractapp.ContractResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /contracts [get]
func (h *ContractHandler) List(c *gin.Context) {
	var filter contractapp.ContractListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	contracts, total, err := h.contractService.ListContracts(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, contracts, total, filter.Page, filter.PageSize)
}

// UpdateTermins godoc
// @ID           updateContractTermins
// @Summary      Replace the termin schedule
// @Description  Replace the installment schedule of a contract; periods are parsed against the Indonesian month lexicon
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Param        request body contractapp.UpdateTerminsRequest true "Termin schedule request"
// @Success      200 {object} APIResponse[contractapp.ContractResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /contracts/{id}/termins [put]
func (h *ContractHandler) UpdateTermins(c *gin.Context) {
	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	var req contractapp.UpdateTerminsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contr, err := h.contractService.UpdateTermins(c.Request.Context(), contractID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, contr)
}

// GetNextTermin godoc
// @ID           getContractNextTermin
// @Summary      Get the next due termin
// @Description  Return the current or next due installment relative to today
// @Tags         contracts
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Success      200 {object} APIResponse[contractapp.TerminResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /contracts/{id}/termins/next [get]
func (h *ContractHandler) GetNextTermin(c *gin.Context) {
	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	termin, err := h.contractService.GetNextTermin(c.Request.Context(), contractID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, termin)
}

// Complete godoc
// @ID           completeContract
// @Summary      Complete a contract
// @Description  Mark an active contract as completed
// @Tags         contracts
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Success      200 {object} APIResponse[contractapp.ContractResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /contracts/{id}/complete [post]
func (h *ContractHandler) Complete(c *gin.Context) {
	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	contr, err := h.contractService.CompleteContract(c.Request.Context(), contractID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, contr)
}

// Terminate godoc
// @ID           terminateContract
// @Summary      Terminate a contract
// @Description  End an active contract early with a note
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Param        request body TerminateContractRequest true "Termination request"
// @Success      200 {object} APIResponse[contractapp.ContractResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /contracts/{id}/terminate [post]
func (h *ContractHandler) Terminate(c *gin.Context) {
	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	var req TerminateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contr, err := h.contractService.TerminateContract(c.Request.Context(), contractID, req.Note)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, contr)
}
