package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/worklog-dictionaries/internal/apiserver/dto"
	"github.com/spec-kit/worklog-dictionaries/internal/apiserver/repository"
	"github.com/spec-kit/worklog-dictionaries/internal/domain"
)

// DictionariesHandler serves the reference-data endpoints.
type DictionariesHandler struct {
	catering      repository.VendorRepository
	accommodation repository.VendorRepository
	teams         repository.TeamRepository
	members       repository.MemberRepository
}

// NewDictionariesHandler constructs handler.
func NewDictionariesHandler(
	catering, accommodation repository.VendorRepository,
	teams repository.TeamRepository,
	members repository.MemberRepository,
) *DictionariesHandler {
	return &DictionariesHandler{
		catering:      catering,
		accommodation: accommodation,
		teams:         teams,
		members:       members,
	}
}

// ListCatering handles GET /dictionaries/catering.
func (h *DictionariesHandler) ListCatering(c *fiber.Ctx) error {
	return h.listVendors(c, h.catering)
}

// CreateCatering handles POST /dictionaries/catering.
func (h *DictionariesHandler) CreateCatering(c *fiber.Ctx) error {
	return h.createVendor(c, h.catering)
}

// UpdateCatering handles PUT /dictionaries/catering/:id.
func (h *DictionariesHandler) UpdateCatering(c *fiber.Ctx) error {
	return h.updateVendor(c, h.catering)
}

// DeleteCatering handles DELETE /dictionaries/catering/:id.
func (h *DictionariesHandler) DeleteCatering(c *fiber.Ctx) error {
	return h.deleteVendor(c, h.catering)
}

// ListAccommodation handles GET /dictionaries/accommodation.
func (h *DictionariesHandler) ListAccommodation(c *fiber.Ctx) error {
	return h.listVendors(c, h.accommodation)
}

// CreateAccommodation handles POST /dictionaries/accommodation.
func (h *DictionariesHandler) CreateAccommodation(c *fiber.Ctx) error {
	return h.createVendor(c, h.accommodation)
}

// UpdateAccommodation handles PUT /dictionaries/accommodation/:id.
func (h *DictionariesHandler) UpdateAccommodation(c *fiber.Ctx) error {
	return h.updateVendor(c, h.accommodation)
}

// DeleteAccommodation handles DELETE /dictionaries/accommodation/:id.
func (h *DictionariesHandler) DeleteAccommodation(c *fiber.Ctx) error {
	return h.deleteVendor(c, h.accommodation)
}

// ListTeams handles GET /dictionaries/team. Teams embed their members.
func (h *DictionariesHandler) ListTeams(c *fiber.Ctx) error {
	teams, err := h.teams.ListWithMembers(c.Context())
	if err != nil {
		return err
	}
	if teams == nil {
		teams = []domain.Team{}
	}
	return c.JSON(teams)
}

// CreateTeam handles POST /dictionaries/team.
func (h *DictionariesHandler) CreateTeam(c *fiber.Ctx) error {
	var req dto.TeamRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "name required")
	}

	team, err := h.teams.Create(c.Context(), req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(team)
}

// UpdateTeam handles PUT /dictionaries/team/:id.
func (h *DictionariesHandler) UpdateTeam(c *fiber.Ctx) error {
	var req dto.TeamRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "name required")
	}

	team, err := h.teams.Update(c.Context(), c.Params("id"), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(team)
}

// CreateMember handles POST /dictionaries/team/members.
func (h *DictionariesHandler) CreateMember(c *fiber.Ctx) error {
	req, err := parseMemberRequest(c)
	if err != nil {
		return err
	}
	member, err := h.members.Create(c.Context(), req.Name, req.Role, req.TeamID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(member)
}

// UpdateMember handles PUT /dictionaries/team/members/:id.
func (h *DictionariesHandler) UpdateMember(c *fiber.Ctx) error {
	req, err := parseMemberRequest(c)
	if err != nil {
		return err
	}
	member, err := h.members.Update(c.Context(), c.Params("id"), req.Name, req.Role, req.TeamID)
	if err != nil {
		return err
	}
	return c.JSON(member)
}

// DeleteMember handles DELETE /dictionaries/team/members/:id.
func (h *DictionariesHandler) DeleteMember(c *fiber.Ctx) error {
	if err := h.members.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *DictionariesHandler) listVendors(c *fiber.Ctx, repo repository.VendorRepository) error {
	vendors, err := repo.List(c.Context())
	if err != nil {
		return err
	}
	out := make([]fiber.Map, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, vendorResponse(v))
	}
	return c.JSON(out)
}

func (h *DictionariesHandler) createVendor(c *fiber.Ctx, repo repository.VendorRepository) error {
	req, err := parseVendorRequest(c)
	if err != nil {
		return err
	}
	vendor, err := repo.Create(c.Context(), req.TaxID, req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(vendorResponse(*vendor))
}

func (h *DictionariesHandler) updateVendor(c *fiber.Ctx, repo repository.VendorRepository) error {
	req, err := parseVendorRequest(c)
	if err != nil {
		return err
	}
	vendor, err := repo.Update(c.Context(), c.Params("id"), req.TaxID, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(vendorResponse(*vendor))
}

func (h *DictionariesHandler) deleteVendor(c *fiber.Ctx, repo repository.VendorRepository) error {
	if err := repo.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseVendorRequest(c *fiber.Ctx) (dto.VendorRequest, error) {
	var req dto.VendorRequest
	if err := c.BodyParser(&req); err != nil {
		return req, fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	req.TaxID = strings.TrimSpace(req.TaxID)
	req.Name = strings.TrimSpace(req.Name)
	if req.TaxID == "" || req.Name == "" {
		return req, fiber.NewError(http.StatusBadRequest, "taxId and name required")
	}
	return req, nil
}

func parseMemberRequest(c *fiber.Ctx) (dto.MemberRequest, error) {
	var req dto.MemberRequest
	if err := c.BodyParser(&req); err != nil {
		return req, fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return req, fiber.NewError(http.StatusBadRequest, "name required")
	}
	if !req.Role.Valid() {
		return req, fiber.NewError(http.StatusBadRequest, "role must be WORKER or SUPERVISOR")
	}
	return req, nil
}

func vendorResponse(v repository.Vendor) fiber.Map {
	return fiber.Map{"id": v.ID, "taxId": v.TaxID, "name": v.Name}
}
