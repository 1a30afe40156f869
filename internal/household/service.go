// Package household aggregates one family's records — head, members, active
// identity-card request, active certificates — into a single overview for the
// dashboard. Sources are fetched concurrently; any failure fails the whole
// overview rather than presenting a partial household.
package household

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"locality/internal/certificate"
	"locality/internal/directory"
	"locality/internal/idcard"
)

// DirectorySource supplies the structural records.
type DirectorySource interface {
	GetHead(ctx context.Context, id uuid.UUID) (directory.FamilyHead, error)
	ListMembers(ctx context.Context, headID uuid.UUID, includeRemoved bool) ([]directory.Member, error)
}

// IDCardSource supplies the member's current identity-card request, if any.
type IDCardSource interface {
	ActiveByMember(ctx context.Context, memberID, headID uuid.UUID) (*idcard.Request, error)
}

// CertificateSource supplies the member's active certificate requests.
type CertificateSource interface {
	ActiveByMember(ctx context.Context, memberID uuid.UUID) ([]certificate.Certificate, error)
}

// MemberOverview is one member plus their outstanding requests.
type MemberOverview struct {
	Member             directory.Member
	IDRequest          *idcard.Request
	ActiveCertificates []certificate.Certificate
}

// Overview is the assembled household.
type Overview struct {
	Head    directory.FamilyHead
	Members []MemberOverview
}

type Service struct {
	directory DirectorySource
	idcards   IDCardSource
	certs     CertificateSource
}

func New(dir DirectorySource, idcards IDCardSource, certs CertificateSource) *Service {
	return &Service{directory: dir, idcards: idcards, certs: certs}
}

// Overview assembles the household. The head and member list load first;
// per-member request lookups then fan out concurrently.
func (s *Service) Overview(ctx context.Context, headID uuid.UUID) (Overview, error) {
	var (
		head    directory.FamilyHead
		members []directory.Member
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		head, err = s.directory.GetHead(gctx, headID)
		return err
	})
	g.Go(func() error {
		var err error
		members, err = s.directory.ListMembers(gctx, headID, false)
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	overviews := make([]MemberOverview, len(members))
	g, gctx = errgroup.WithContext(ctx)
	for i, member := range members {
		g.Go(func() error {
			req, err := s.idcards.ActiveByMember(gctx, member.ID, headID)
			if err != nil {
				return err
			}
			certs, err := s.certs.ActiveByMember(gctx, member.ID)
			if err != nil {
				return err
			}
			overviews[i] = MemberOverview{
				Member:             member,
				IDRequest:          req,
				ActiveCertificates: certs,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	return Overview{Head: head, Members: overviews}, nil
}
