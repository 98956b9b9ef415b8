package service

import (
	"context"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/internal/repository"
	"github.com/AC-trading/ac-trading/pkg/log"
)

// reportServiceImpl implements ReportService.
type reportServiceImpl struct {
	reports repository.ReportRepository
	posts   repository.PostRepository
	members MemberService
}

// NewReportService creates a new report service.
func NewReportService(reports repository.ReportRepository, posts repository.PostRepository, members MemberService) ReportService {
	return &reportServiceImpl{reports: reports, posts: posts, members: members}
}

func (s *reportServiceImpl) Report(ctx context.Context, memberUUID string, req *domain.ReportRequest) error {
	member, err := s.members.Resolve(ctx, memberUUID)
	if err != nil {
		return err
	}

	// Validate the target exists where we can check cheaply.
	switch req.TargetType {
	case domain.ReportTargetPost:
		post, err := s.posts.GetByID(ctx, req.TargetID)
		if err != nil {
			return err
		}
		if post.MemberID == member.ID {
			return ErrSelfTarget
		}
	case domain.ReportTargetMember:
		if req.TargetID == member.ID {
			return ErrSelfTarget
		}
		if _, err := s.members.ResolveByID(ctx, req.TargetID); err != nil {
			return err
		}
	}

	err = s.reports.Create(ctx, &domain.Report{
		ReporterID: member.ID,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Reason:     req.Reason,
		Detail:     req.Detail,
		Status:     domain.ReportStatusPending,
	})
	if err != nil {
		return err
	}
	l := log.Ctx(ctx)
	l.Info().
		Str("target_type", req.TargetType).
		Int64("target_id", req.TargetID).
		Str("reason", req.Reason).
		Msg("report filed")
	return nil
}
