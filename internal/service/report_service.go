package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/freelancehub/internal/model"
	"github.com/nurpe/freelancehub/internal/store"
)

type ExcelGenerator interface {
	Generate(report model.BidComparison) ([]byte, error)
}

type PDFGenerator interface {
	Generate(doc model.CompletionStatement) ([]byte, error)
}

type ReportService struct {
	store store.Store
	users store.UserDirectory
	excel ExcelGenerator
	pdf   PDFGenerator
	now   func() time.Time
}

type ReportResult struct {
	FileName string
	Content  []byte
}

func NewReportService(st store.Store, users store.UserDirectory, excel ExcelGenerator, pdf PDFGenerator) *ReportService {
	return &ReportService{
		store: st,
		users: users,
		excel: excel,
		pdf:   pdf,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// ExportBids renders every bid on the project into a spreadsheet for its owner.
func (s *ReportService) ExportBids(ctx context.Context, principal model.Principal, projectID uuid.UUID) (*ReportResult, error) {
	project, err := s.store.Projects().Get(ctx, projectID)
	if err != nil {
		return nil, storeError(err, "project")
	}
	if err := requireOwner(principal, *project); err != nil {
		return nil, err
	}

	bids, err := s.store.Bids().ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(bids)+1)
	ids = append(ids, project.ClientID)
	for _, b := range bids {
		ids = append(ids, b.FreelancerID)
	}
	users, err := s.users.GetUsers(ctx, ids)
	if err != nil {
		return nil, err
	}

	report := model.BidComparison{
		Project:     *project,
		ClientName:  displayName(users, project.ClientID),
		GeneratedAt: s.now(),
		Rows:        make([]model.BidComparisonRow, 0, len(bids)),
	}
	for _, b := range bids {
		report.Rows = append(report.Rows, model.BidComparisonRow{
			Bid:            b,
			FreelancerName: displayName(users, b.FreelancerID),
		})
	}

	content, err := s.excel.Generate(report)
	if err != nil {
		return nil, fmt.Errorf("generate bids spreadsheet: %w", err)
	}
	return &ReportResult{
		FileName: fmt.Sprintf("bids_%s_%s.xlsx", fileSlug(project.Title), report.GeneratedAt.Format("20060102")),
		Content:  content,
	}, nil
}

// CompletionStatement issues the PDF summary of a completed engagement to either party.
func (s *ReportService) CompletionStatement(ctx context.Context, principal model.Principal, projectID uuid.UUID) (*ReportResult, error) {
	project, err := s.store.Projects().Get(ctx, projectID)
	if err != nil {
		return nil, storeError(err, "project")
	}
	if !canAccessDeliverables(principal, *project) {
		return nil, fmt.Errorf("%w: only the client or the assigned freelancer can get the statement", ErrPermissionDenied)
	}
	if project.Status != model.ProjectStatusCompleted || project.AssignedFreelancerID == nil {
		return nil, fmt.Errorf("%w: project is '%s', statements are issued for completed projects", ErrInvalidState, project.Status)
	}

	bid, err := s.store.Bids().FindByProjectAndFreelancer(ctx, project.ID, *project.AssignedFreelancerID)
	if err != nil {
		return nil, storeError(err, "accepted bid")
	}
	deliverables, err := s.store.Deliverables().ListByProject(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	users, err := s.users.GetUsers(ctx, []uuid.UUID{project.ClientID, *project.AssignedFreelancerID})
	if err != nil {
		return nil, err
	}

	doc := model.CompletionStatement{
		Project:      *project,
		Client:       party(users, project.ClientID, model.UserRoleClient),
		Freelancer:   party(users, *project.AssignedFreelancerID, model.UserRoleFreelancer),
		AcceptedBid:  *bid,
		Deliverables: deliverables,
		IssuedAt:     s.now(),
	}
	content, err := s.pdf.Generate(doc)
	if err != nil {
		return nil, fmt.Errorf("generate completion statement: %w", err)
	}
	return &ReportResult{
		FileName: fmt.Sprintf("statement_%s.pdf", fileSlug(project.Title)),
		Content:  content,
	}, nil
}

func displayName(users map[uuid.UUID]model.User, id uuid.UUID) string {
	if u, ok := users[id]; ok && u.Username != "" {
		return u.Username
	}
	return id.String()
}

func party(users map[uuid.UUID]model.User, id uuid.UUID, role model.UserRole) model.Party {
	p := model.Party{ID: id, Name: displayName(users, id), Role: role}
	if u, ok := users[id]; ok {
		p.Email = u.Email
	}
	return p
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

func fileSlug(title string) string {
	slug := strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(title), "_"), "_")
	if slug == "" {
		return "project"
	}
	if len(slug) > 40 {
		slug = strings.TrimRight(slug[:40], "_")
	}
	return slug
}
