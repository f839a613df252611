package service

import (
	"context"
	"strings"

	"ambassador-tracker/internal/biz"
	"ambassador-tracker/internal/domain"

	"github.com/samber/lo"
)

func (s *UniversityService) sender(university *UniversityClaims, universityName string) biz.InviteInput {
	name := strings.TrimSpace(universityName)
	if name == "" {
		name = university.Name
	}
	return biz.InviteInput{
		UniversityID:    university.Subject,
		UniversityName:  name,
		UniversityEmail: university.Email,
	}
}

func (s *UniversityService) SendInvitation(ctx context.Context, req *SendInvitationRequest) (*SendInvitationReply, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	university, err := universityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	in := s.sender(university, req.UniversityName)
	in.AmbassadorName = req.AmbassadorName
	in.AmbassadorEmail = req.AmbassadorEmail
	res, err := s.invitations.Invite(ctx, in)
	if err != nil {
		return nil, err
	}

	reply := &SendInvitationReply{
		Success:      res.Delivered,
		Message:      "Invitation sent successfully",
		SentTo:       res.Email,
		InvitationID: res.Invitation.ID(),
	}
	if !res.Delivered {
		reply.Message = "Invitation recorded but the email could not be delivered"
	}
	return reply, nil
}

func (s *UniversityService) SendBulkInvitations(ctx context.Context, req *SendBulkInvitationsRequest) (*SendBulkInvitationsReply, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	university, err := universityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	recipients := lo.Map(req.Invitations, func(r BulkRecipient, _ int) biz.Recipient {
		return biz.Recipient{Name: r.AmbassadorName, Email: r.AmbassadorEmail}
	})
	out := s.invitations.BulkInvite(ctx, s.sender(university, req.UniversityName), recipients)

	return &SendBulkInvitationsReply{
		TotalSent:   out.TotalSent,
		TotalFailed: out.TotalFailed,
		Results: lo.Map(out.Results, func(r biz.InviteResult, _ int) BulkResult {
			msg := "Invitation sent"
			if !r.Delivered {
				msg = r.Error
			}
			return BulkResult{Email: r.Email, Success: r.Delivered, Message: msg}
		}),
	}, nil
}

func (s *UniversityService) ListInvitations(ctx context.Context, req *ListInvitationsRequest) (*ListInvitationsReply, error) {
	university, err := universityFromContext(ctx)
	if err != nil {
		return nil, err
	}
	page, err := s.invitations.List(ctx, university.Subject, req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}
	return &ListInvitationsReply{
		Invitations:  lo.Map(page.Invitations, func(inv *domain.Invitation, _ int) InvitationInfo { return toInvitationInfo(inv) }),
		TotalCount:   page.TotalCount,
		StatusCounts: toStatusCounts(page.StatusCounts),
		Page:         page.Page,
		PageSize:     page.PageSize,
	}, nil
}

func (s *UniversityService) SetInvitationStatus(ctx context.Context, req *SetStatusRequest) (*SetStatusReply, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	if _, err := universityFromContext(ctx); err != nil {
		return nil, err
	}
	status, err := domain.ParseInvitationStatus(req.Status)
	if err != nil {
		return nil, err
	}
	inv, err := s.invitations.SetStatus(ctx, req.Email, status)
	if err != nil {
		return nil, err
	}
	return &SetStatusReply{
		Success:    true,
		Message:    "Invitation status updated to " + string(inv.Status()),
		Invitation: toInvitationInfo(inv),
	}, nil
}

// RespondInvitation handles the accept and decline links of the invitation
// email. The token is the invited email address.
func (s *UniversityService) RespondInvitation(ctx context.Context, req *RespondRequest) (*SetStatusReply, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	status := domain.StatusAccepted
	if req.Action == "decline" {
		status = domain.StatusDeclined
	}
	inv, err := s.invitations.SetStatus(ctx, req.Token, status)
	if err != nil {
		return nil, err
	}
	return &SetStatusReply{
		Success:    true,
		Message:    "Invitation " + strings.ToLower(string(inv.Status())),
		Invitation: toInvitationInfo(inv),
	}, nil
}

func (s *UniversityService) CheckInvitation(ctx context.Context, req *CheckInvitationRequest) (*CheckInvitationReply, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	check, err := s.invitations.CheckStatus(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	return &CheckInvitationReply{
		WasInvited:     check.WasInvited,
		Status:         string(check.Status),
		UniversityName: check.UniversityName,
	}, nil
}
