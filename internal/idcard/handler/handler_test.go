package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"locality/internal/idcard"
	"locality/internal/idcard/handler/mocks"
	"locality/internal/idcard/service"
	dErrors "locality/pkg/domain-errors"
	"locality/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	head    chi.Router
	admin   chi.Router

	headID uuid.UUID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.headID = uuid.New()

	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.head = chi.NewRouter()
	h.RegisterHead(s.head)
	s.admin = chi.NewRouter()
	h.RegisterAdmin(s.admin)
}

func (s *HandlerSuite) submitBody() map[string]any {
	return map[string]any{
		"member_id": uuid.New().String(),
		"full_name": "Asha Verma",
		"address":   "12 Canal Road",
		"card_type": "standard",
	}
}

func (s *HandlerSuite) TestHandleSubmit() {
	s.Run("submits on behalf of the authenticated head", func() {
		body := s.submitBody()
		created := idcard.Request{ID: uuid.New(), HeadID: s.headID, Status: idcard.StatusPending}

		s.service.EXPECT().
			CreateOrResubmit(gomock.Any(), s.headID, gomock.Any()).
			DoAndReturn(func(_ any, _ uuid.UUID, params service.SubmitParams) (idcard.Request, error) {
				s.Equal(body["member_id"], params.MemberID.String())
				s.Equal("Asha Verma", params.Applicant.FullName)
				s.Equal("standard", params.CardType)
				return created, nil
			})

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/id-requests", body)
		req = req.WithContext(testutil.HeadContext(s.headID))
		rr := testutil.DoRequest(s.head, req)

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		resp := testutil.DecodeData[RequestResponse](s.T(), rr)
		s.Equal(created.ID, resp.ID)
		s.Equal(string(idcard.StatusPending), resp.Status)
	})

	s.Run("missing member_id never reaches the service", func() {
		body := s.submitBody()
		delete(body, "member_id")

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/id-requests", body)
		req = req.WithContext(testutil.HeadContext(s.headID))
		rr := testutil.DoRequest(s.head, req)

		testutil.AssertFailureMessage(s.T(), rr, http.StatusBadRequest, "member_id is required")
	})

	s.Run("service conflict maps to 409", func() {
		s.service.EXPECT().
			CreateOrResubmit(gomock.Any(), s.headID, gomock.Any()).
			Return(idcard.Request{}, dErrors.New(dErrors.CodeConflict, "an identity card request is already under review"))

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/id-requests", s.submitBody())
		req = req.WithContext(testutil.HeadContext(s.headID))
		rr := testutil.DoRequest(s.head, req)

		testutil.AssertFailureMessage(s.T(), rr, http.StatusConflict, "an identity card request is already under review")
	})
}

func (s *HandlerSuite) TestHandleListByStatus() {
	s.Run("defaults to the pending queue", func() {
		s.service.EXPECT().
			ListByStatus(gomock.Any(), idcard.StatusPending).
			Return([]idcard.Request{{ID: uuid.New()}}, nil)

		req := testutil.NewRequest(s.T(), http.MethodGet, "/id-requests")
		rr := testutil.DoRequest(s.admin, req)

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.DecodeData[[]RequestResponse](s.T(), rr)
		s.Len(resp, 1)
	})

	s.Run("passes an explicit status through", func() {
		s.service.EXPECT().
			ListByStatus(gomock.Any(), idcard.StatusApproved).
			Return(nil, nil)

		req := testutil.NewRequest(s.T(), http.MethodGet, "/id-requests?status=APPROVED")
		rr := testutil.DoRequest(s.admin, req)

		testutil.AssertStatusOK(s.T(), rr)
	})
}

func (s *HandlerSuite) TestHandleSetStatus() {
	requestID := uuid.New()

	s.Run("uppercases the decision and parses the expiry", func() {
		expiry := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
		s.service.EXPECT().
			SetStatus(gomock.Any(), requestID, idcard.StatusApproved, gomock.Any()).
			DoAndReturn(func(_ any, _ uuid.UUID, _ idcard.Status, expiresAt *time.Time) (idcard.Request, error) {
				s.Require().NotNil(expiresAt)
				s.True(expiresAt.Equal(expiry))
				return idcard.Request{ID: requestID, Status: idcard.StatusApproved, ExpiresAt: expiresAt}, nil
			})

		body := map[string]any{"status": "approved", "expires_at": expiry.Format(time.RFC3339)}
		req := testutil.NewJSONRequest(s.T(), http.MethodPatch, "/id-requests/"+requestID.String()+"/status", body)
		rr := testutil.DoRequest(s.admin, req)

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.DecodeData[RequestResponse](s.T(), rr)
		s.Equal(string(idcard.StatusApproved), resp.Status)
	})

	s.Run("malformed expiry is rejected", func() {
		body := map[string]any{"status": "APPROVED", "expires_at": "next June"}
		req := testutil.NewJSONRequest(s.T(), http.MethodPatch, "/id-requests/"+requestID.String()+"/status", body)
		rr := testutil.DoRequest(s.admin, req)

		testutil.AssertFailureMessage(s.T(), rr, http.StatusBadRequest, "expires_at must be an RFC 3339 timestamp")
	})

	s.Run("malformed path id is rejected", func() {
		body := map[string]any{"status": "APPROVED"}
		req := testutil.NewJSONRequest(s.T(), http.MethodPatch, "/id-requests/not-a-uuid/status", body)
		rr := testutil.DoRequest(s.admin, req)

		testutil.AssertFailureMessage(s.T(), rr, http.StatusBadRequest, "requestID must be a valid UUID")
	})
}

func (s *HandlerSuite) TestGetScoping() {
	requestID := uuid.New()

	s.Run("head reads are scoped to the principal", func() {
		s.service.EXPECT().
			Get(gomock.Any(), requestID, s.headID).
			Return(idcard.Request{ID: requestID, HeadID: s.headID}, nil)

		req := testutil.NewRequest(s.T(), http.MethodGet, "/id-requests/"+requestID.String())
		req = req.WithContext(testutil.HeadContext(s.headID))
		rr := testutil.DoRequest(s.head, req)

		testutil.AssertStatusOK(s.T(), rr)
	})

	s.Run("admin reads are unscoped", func() {
		s.service.EXPECT().
			Get(gomock.Any(), requestID, uuid.Nil).
			Return(idcard.Request{ID: requestID}, nil)

		req := testutil.NewRequest(s.T(), http.MethodGet, "/id-requests/"+requestID.String())
		rr := testutil.DoRequest(s.admin, req)

		testutil.AssertStatusOK(s.T(), rr)
	})

	s.Run("not found maps to 404", func() {
		s.service.EXPECT().
			Get(gomock.Any(), requestID, uuid.Nil).
			Return(idcard.Request{}, dErrors.New(dErrors.CodeNotFound, "identity card request not found"))

		req := testutil.NewRequest(s.T(), http.MethodGet, "/id-requests/"+requestID.String())
		rr := testutil.DoRequest(s.admin, req)

		testutil.AssertFailureMessage(s.T(), rr, http.StatusNotFound, "identity card request not found")
	})
}
