package contract

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sikontrak/backend/internal/domain/contract"
	"github.com/sikontrak/backend/internal/domain/shared"
	"github.com/sikontrak/backend/internal/domain/shared/valueobject"
)

// ContractService provides application-level contract operations
type ContractService struct {
	contractRepo contract.ContractRepository
}

// NewContractService creates a new ContractService
func NewContractService(contractRepo contract.ContractRepository) *ContractService {
	return &ContractService{contractRepo: contractRepo}
}

// TerminResponse represents one installment of a contract schedule
type TerminResponse struct {
	TerminNumber *int   `json:"termin_number,omitempty"`
	Period       string `json:"period,omitempty"`
	RawText      string `json:"raw_text,omitempty"`
	Label        string `json:"label"`
	Year         *int   `json:"year,omitempty"`
	Month        *int   `json:"month,omitempty"`
	Parsed       bool   `json:"parsed"`
}

// DurationResponse represents a contract duration with its classification
type DurationResponse struct {
	Days   int    `json:"days"`
	Months int    `json:"months"`
	Years  int    `json:"years"`
	Class  string `json:"class"`
}

// ContractResponse represents a contract in API responses
type ContractResponse struct {
	ID             uuid.UUID         `json:"id"`
	ContractNumber string            `json:"contract_number"`
	CustomerName   string            `json:"customer_name"`
	Description    string            `json:"description,omitempty"`
	Value          decimal.Decimal   `json:"value"`
	StartDate      time.Time         `json:"start_date"`
	EndDate        time.Time         `json:"end_date"`
	Status         string            `json:"status"`
	Termins        []TerminResponse  `json:"termins,omitempty"`
	NextTermin     *TerminResponse   `json:"next_termin,omitempty"`
	Duration       *DurationResponse `json:"duration,omitempty"`
	TerminatedAt   *time.Time        `json:"terminated_at,omitempty"`
	TerminateNote  string            `json:"terminate_note,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	Version        int               `json:"version"`
}

// CreateContractRequest is the payload for creating a contract
type CreateContractRequest struct {
	ContractNumber string                  `json:"contract_number" binding:"required"`
	CustomerName   string                  `json:"customer_name" binding:"required"`
	Description    string                  `json:"description,omitempty"`
	Value          string                  `json:"value" binding:"required"`
	StartDate      time.Time               `json:"start_date" binding:"required"`
	EndDate        time.Time               `json:"end_date" binding:"required"`
	Termins        []TerminDescriptorInput `json:"termins,omitempty"`
}

// TerminDescriptorInput is one installment in a create/update payload
type TerminDescriptorInput struct {
	TerminNumber *int   `json:"termin_number,omitempty"`
	Period       string `json:"period,omitempty"`
	RawText      string `json:"raw_text,omitempty"`
}

// UpdateTerminsRequest replaces the termin schedule
type UpdateTerminsRequest struct {
	Termins []TerminDescriptorInput `json:"termins" binding:"required"`
}

// ContractListFilter defines filtering options for contract list queries
type ContractListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
	OrderBy  string `form:"order_by,default=created_at"`
	OrderDir string `form:"order_dir,default=desc"`
}

// CreateContract creates a new contract with an optional termin schedule
func (s *ContractService) CreateContract(ctx context.Context, req CreateContractRequest) (*ContractResponse, error) {
	exists, err := s.contractRepo.ExistsByContractNumber(ctx, req.ContractNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.ErrAlreadyExists
	}

	value, err := valueobject.NewMoneyIDRFromString(req.Value)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Contract value must be a decimal string")
	}

	contr, err := contract.NewContract(req.ContractNumber, req.CustomerName, value, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	if req.Description != "" {
		contr.Description = req.Description
	}
	if len(req.Termins) > 0 {
		if err := contr.SetTermins(toDescriptors(req.Termins)); err != nil {
			return nil, err
		}
	}

	if err := s.contractRepo.Save(ctx, contr); err != nil {
		return nil, err
	}

	return s.toResponse(contr, time.Now()), nil
}

// GetContractByID gets a contract by ID, including its parsed schedule,
// next due termin and duration
func (s *ContractService) GetContractByID(ctx context.Context, id uuid.UUID) (*ContractResponse, error) {
	contr, err := s.contractRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(contr, time.Now()), nil
}

// ListContracts lists contracts with filtering and pagination
func (s *ContractService) ListContracts(ctx context.Context, filter ContractListFilter) ([]ContractResponse, int64, error) {
	repoFilter := contract.ContractFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
	}
	if filter.Status != "" {
		status := contract.ContractStatus(filter.Status)
		repoFilter.Status = &status
	}

	contracts, err := s.contractRepo.FindAll(ctx, repoFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.contractRepo.Count(ctx, repoFilter)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now()
	responses := make([]ContractResponse, 0, len(contracts))
	for i := range contracts {
		responses = append(responses, *s.toResponse(&contracts[i], now))
	}
	return responses, total, nil
}

// UpdateTermins replaces the termin schedule of a contract
func (s *ContractService) UpdateTermins(ctx context.Context, id uuid.UUID, req UpdateTerminsRequest) (*ContractResponse, error) {
	contr, err := s.contractRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := contr.SetTermins(toDescriptors(req.Termins)); err != nil {
		return nil, err
	}

	if err := s.contractRepo.SaveWithLock(ctx, contr); err != nil {
		return nil, err
	}

	return s.toResponse(contr, time.Now()), nil
}

// GetNextTermin returns the current or next due installment for a contract
func (s *ContractService) GetNextTermin(ctx context.Context, id uuid.UUID) (*TerminResponse, error) {
	contr, err := s.contractRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := contr.NextTermin(time.Now())
	if next == nil {
		return nil, shared.NewDomainError("NO_TERMINS", "Contract has no termin schedule")
	}
	resp := toTerminResponse(*next)
	return &resp, nil
}

// CompleteContract marks a contract as completed
func (s *ContractService) CompleteContract(ctx context.Context, id uuid.UUID) (*ContractResponse, error) {
	contr, err := s.contractRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := contr.Complete(); err != nil {
		return nil, err
	}

	if err := s.contractRepo.SaveWithLock(ctx, contr); err != nil {
		return nil, err
	}

	return s.toResponse(contr, time.Now()), nil
}

// TerminateContract ends a contract early with a note
func (s *ContractService) TerminateContract(ctx context.Context, id uuid.UUID, note string) (*ContractResponse, error) {
	contr, err := s.contractRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := contr.Terminate(note); err != nil {
		return nil, err
	}

	if err := s.contractRepo.SaveWithLock(ctx, contr); err != nil {
		return nil, err
	}

	return s.toResponse(contr, time.Now()), nil
}

func toDescriptors(inputs []TerminDescriptorInput) []contract.TerminDescriptor {
	descriptors := make([]contract.TerminDescriptor, 0, len(inputs))
	for _, in := range inputs {
		descriptors = append(descriptors, contract.TerminDescriptor{
			TerminNumber: in.TerminNumber,
			Period:       in.Period,
			RawText:      in.RawText,
		})
	}
	return descriptors
}

func toTerminResponse(p contract.ParsedTermin) TerminResponse {
	resp := TerminResponse{
		TerminNumber: p.Descriptor.TerminNumber,
		Period:       p.Descriptor.Period,
		RawText:      p.Descriptor.RawText,
		Label:        p.Label(),
		Parsed:       p.Date != nil,
	}
	if p.Date != nil {
		year := p.Date.Year
		month := int(p.Date.Month)
		resp.Year = &year
		resp.Month = &month
	}
	return resp
}

func (s *ContractService) toResponse(contr *contract.Contract, now time.Time) *ContractResponse {
	schedule := contr.Schedule()
	termins := make([]TerminResponse, 0, len(schedule))
	for _, p := range schedule {
		termins = append(termins, toTerminResponse(p))
	}

	var next *TerminResponse
	if match := contr.NextTermin(now); match != nil {
		resp := toTerminResponse(*match)
		next = &resp
	}

	var duration *DurationResponse
	if d, err := contr.Duration(); err == nil {
		duration = &DurationResponse{
			Days:   d.Days,
			Months: d.Months,
			Years:  d.Years,
			Class:  d.Class().String(),
		}
	}

	return &ContractResponse{
		ID:             contr.ID,
		ContractNumber: contr.ContractNumber,
		CustomerName:   contr.CustomerName,
		Description:    contr.Description,
		Value:          contr.Value,
		StartDate:      contr.StartDate,
		EndDate:        contr.EndDate,
		Status:         contr.Status.String(),
		Termins:        termins,
		NextTermin:     next,
		Duration:       duration,
		TerminatedAt:   contr.TerminatedAt,
		TerminateNote:  contr.TerminateNote,
		CreatedAt:      contr.CreatedAt,
		UpdatedAt:      contr.UpdatedAt,
		Version:        contr.Version,
	}
}
