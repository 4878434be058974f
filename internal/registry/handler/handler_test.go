package handler_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	jwttoken "namereg/internal/jwt_token"
	"namereg/internal/registry/handler"
	"namereg/internal/registry/service"
	domainstore "namereg/internal/registry/store/domain"
	historystore "namereg/internal/registry/store/history"
	ownerstore "namereg/internal/registry/store/owner"
	reservationstore "namereg/internal/registry/store/reservation"
	id "namereg/pkg/domain"
	"namereg/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	router chi.Router
	jwt    *jwttoken.JWTService

	admin id.Identity
	alice id.Identity
	bob   id.Identity
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.admin = id.NewIdentity()
	s.alice = id.NewIdentity()
	s.bob = id.NewIdentity()

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	svc, err := service.New(
		context.Background(),
		domainstore.NewInMemory(),
		historystore.NewInMemory(),
		reservationstore.NewInMemory(),
		ownerstore.NewInMemory(),
		s.admin,
		service.WithLogger(logger),
	)
	s.Require().NoError(err)

	s.jwt = jwttoken.NewJWTService("handler-test-key", "namereg", "namereg-api")
	s.router = chi.NewRouter()
	handler.New(svc, s.jwt, logger).Register(s.router)
}

func (s *HandlerSuite) authed(req *http.Request, caller id.Identity) *http.Request {
	token, err := s.jwt.GenerateAccessToken(caller, time.Hour)
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func (s *HandlerSuite) claimDomain(caller id.Identity, name string) string {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/registry/claim", map[string]any{
		"name":             name,
		"extension":        "icp",
		"duration_seconds": 3600,
	})
	rr := testutil.DoRequest(s.router, s.authed(req, caller))
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	resp := testutil.UnmarshalResponse[map[string]any](s.T(), rr)
	return (*resp)["key"].(string)
}

func (s *HandlerSuite) TestClaim() {
	s.Run("creates a record and returns the canonical key", func() {
		key := s.claimDomain(s.alice, "alice")
		s.Equal("alice.icp", key)
	})

	s.Run("rejects a second claim with a conflict", func() {
		s.claimDomain(s.alice, "taken")

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/registry/claim", map[string]any{
			"name":             "taken",
			"extension":        "icp",
			"duration_seconds": 3600,
		})
		rr := testutil.DoRequest(s.router, s.authed(req, s.bob))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "domain_already_claimed")
	})

	s.Run("rejects invalid input with 400", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/registry/claim", map[string]any{
			"name":             "ab",
			"extension":        "icp",
			"duration_seconds": 3600,
		})
		rr := testutil.DoRequest(s.router, s.authed(req, s.alice))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_domain_name_length")

		req = testutil.NewJSONRequest(s.T(), http.MethodPost, "/registry/claim", map[string]any{
			"name":             "alice",
			"extension":        "icp",
			"duration_seconds": 0,
		})
		rr = testutil.DoRequest(s.router, s.authed(req, s.alice))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_duration")
	})

	s.Run("rejects missing token with 401", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/registry/claim", map[string]any{
			"name":             "alice",
			"extension":        "icp",
			"duration_seconds": 3600,
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("rejects malformed body with 400", func() {
		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/registry/claim", "{not-json")
		rr := testutil.DoRequest(s.router, s.authed(req, s.alice))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *HandlerSuite) TestReserve() {
	s.Run("admin reserves a key for a target", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/registry/reserve", map[string]any{
			"name":      "vip",
			"extension": "icp",
			"target":    s.alice.String(),
		})
		rr := testutil.DoRequest(s.router, s.authed(req, s.admin))
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		testutil.AssertJSONContains(s.T(), rr, "key", "vip.icp")

		// The reservation blocks everyone but the target.
		req = testutil.NewJSONRequest(s.T(), http.MethodPost, "/registry/claim", map[string]any{
			"name":             "vip",
			"extension":        "icp",
			"duration_seconds": 3600,
		})
		rr = testutil.DoRequest(s.router, s.authed(req, s.bob))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "domain_reserved")
	})

	s.Run("non-admin is forbidden", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/registry/reserve", map[string]any{
			"name":      "vip2",
			"extension": "icp",
			"target":    s.bob.String(),
		})
		rr := testutil.DoRequest(s.router, s.authed(req, s.alice))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "caller_not_registry_owner")
	})

	s.Run("malformed target is rejected", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/registry/reserve", map[string]any{
			"name":      "vip3",
			"extension": "icp",
			"target":    "not-a-uuid",
		})
		rr := testutil.DoRequest(s.router, s.authed(req, s.admin))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})
}

func (s *HandlerSuite) TestRevoke() {
	key := s.claimDomain(s.alice, "mine")

	s.Run("non-owner is rejected while the record is valid", func() {
		req := testutil.NewRequest(s.T(), http.MethodPost, "/registry/domains/"+key+"/revoke")
		rr := testutil.DoRequest(s.router, s.authed(req, s.bob))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "domain_still_valid")
	})

	s.Run("owner revokes", func() {
		req := testutil.NewRequest(s.T(), http.MethodPost, "/registry/domains/"+key+"/revoke")
		rr := testutil.DoRequest(s.router, s.authed(req, s.alice))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/registry/domains/"+key+"/claimable"))
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "claimable", true)
	})
}

func (s *HandlerSuite) TestTransfer() {
	key := s.claimDomain(s.alice, "deal")

	s.Run("only the owner may transfer", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/registry/domains/"+key+"/transfer", map[string]any{
			"new_owner": s.bob.String(),
		})
		rr := testutil.DoRequest(s.router, s.authed(req, s.bob))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "caller_not_domain_owner")
	})

	s.Run("owner transfers", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/registry/domains/"+key+"/transfer", map[string]any{
			"new_owner": s.bob.String(),
		})
		rr := testutil.DoRequest(s.router, s.authed(req, s.alice))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/registry/domains/"+key+"/owner"))
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "owner", s.bob.String())
	})
}

func (s *HandlerSuite) TestReads() {
	key := s.claimDomain(s.alice, "readable")

	s.Run("get domain", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/registry/domains/"+key))
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "owner", s.alice.String())
	})

	s.Run("get history", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/registry/domains/"+key+"/history"))
		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[map[string][]map[string]any](s.T(), rr)
		s.Len((*resp)["entries"], 1)
	})

	s.Run("reverse lookup", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/registry/owners/"+s.alice.String()+"/domains"))
		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[map[string][]string](s.T(), rr)
		s.Equal([]string{key}, (*resp)["keys"])
	})

	s.Run("reverse lookup with no holdings is an empty list", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/registry/owners/"+id.NewIdentity().String()+"/domains"))
		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[map[string][]string](s.T(), rr)
		s.Empty((*resp)["keys"])
	})

	s.Run("registry owner", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/registry/owner"))
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "owner", s.admin.String())
	})

	s.Run("unknown key maps to 404", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/registry/domains/ghost.icp"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "domain_not_found")
	})

	s.Run("malformed key maps to 400", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/registry/domains/nodot/owner"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_domain_key")
	})
}
