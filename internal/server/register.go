package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"path/filepath"

	"visionaid/internal/utils"
	"visionaid/pkg/types"
)

const maxRegDocumentBytes = 10 << 20

func (s *Service) handleGetRegister(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, r, "page.register", &types.BasePageData{Title: "Register"})
}

func (s *Service) handleGetRegisterIndividual(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, r, "page.register.individual", &types.RegisterIndividualPageData{
		BasePageData: types.BasePageData{Title: "Volunteer Registration"},
	})
}

func (s *Service) handlePostRegisterIndividual(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	var input struct {
		FullName        string `form:"full_name"`
		Email           string `form:"email"`
		Password        string `form:"password"`
		ConfirmPassword string `form:"confirm_password"`
	}
	if err := decoder.Decode(&input, r.PostForm); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	fieldErrors := map[string]string{}
	if input.FullName == "" {
		fieldErrors["full_name"] = "full name is required"
	}
	validateEmailField(fieldErrors, input.Email)
	validatePasswordFields(fieldErrors, input.Password, input.ConfirmPassword)

	render := func() {
		s.renderTemplate(w, r, "page.register.individual", &types.RegisterIndividualPageData{
			BasePageData: types.BasePageData{Title: "Volunteer Registration"},
			FullName:     input.FullName,
			Email:        input.Email,
			FieldErrors:  fieldErrors,
		})
	}

	if len(fieldErrors) > 0 {
		render()
		return
	}

	userID, err := s.identity.CreateUser(r.Context(), input.Email, input.Password, input.FullName)
	if err != nil {
		var validation *types.ValidationError
		if errors.As(err, &validation) {
			for field, message := range validation.Fields {
				fieldErrors[field] = message
			}
			render()
			return
		}

		s.logger.WithError(err).Error("failed to create account with identity provider")
		fieldErrors["email"] = "could not create the account, please try again later"
		render()
		return
	}

	profile := &types.VolunteerProfile{
		FullName: input.FullName,
		Email:    input.Email,
	}
	if err := s.volunteersRepo.Create(r.Context(), userID, profile); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to store volunteer profile")
		fieldErrors["email"] = "could not create the account, please try again later"
		render()
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Service) handleGetRegisterOrganization(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, r, "page.register.organization", &types.RegisterOrganizationPageData{
		BasePageData: types.BasePageData{Title: "Organization Registration"},
	})
}

func (s *Service) handlePostRegisterOrganization(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxRegDocumentBytes); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	var input struct {
		OrgName         string `form:"org_name"`
		Email           string `form:"email"`
		Phone           string `form:"phone"`
		Website         string `form:"website"`
		RegNumber       string `form:"registration_number"`
		Password        string `form:"password"`
		ConfirmPassword string `form:"confirm_password"`
	}
	if err := decoder.Decode(&input, r.MultipartForm.Value); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	fieldErrors := map[string]string{}
	if input.OrgName == "" {
		fieldErrors["org_name"] = "organization name is required"
	}
	if input.RegNumber == "" {
		fieldErrors["registration_number"] = "registration number is required"
	}
	validateEmailField(fieldErrors, input.Email)
	validatePasswordFields(fieldErrors, input.Password, input.ConfirmPassword)

	render := func() {
		s.renderTemplate(w, r, "page.register.organization", &types.RegisterOrganizationPageData{
			BasePageData: types.BasePageData{Title: "Organization Registration"},
			OrgName:      input.OrgName,
			Email:        input.Email,
			Phone:        input.Phone,
			Website:      input.Website,
			RegNumber:    input.RegNumber,
			FieldErrors:  fieldErrors,
		})
	}

	docFile, docHeader, err := r.FormFile("reg_document")
	if err != nil {
		fieldErrors["reg_document"] = "registration document is required"
	}

	if len(fieldErrors) > 0 {
		render()
		return
	}
	defer docFile.Close()

	userID, err := s.identity.CreateUser(r.Context(), input.Email, input.Password, input.OrgName)
	if err != nil {
		var validation *types.ValidationError
		if errors.As(err, &validation) {
			for field, message := range validation.Fields {
				fieldErrors[field] = message
			}
			render()
			return
		}

		s.logger.WithError(err).Error("failed to create account with identity provider")
		fieldErrors["email"] = "could not create the account, please try again later"
		render()
		return
	}

	key := fmt.Sprintf("reg_documents/%s_%s%s", userID, utils.NanoIDSize(8), filepath.Ext(docHeader.Filename))
	docURL, err := s.uploads.Upload(r.Context(), key, docFile, docHeader.Header.Get("Content-Type"))
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to upload registration document")
		fieldErrors["reg_document"] = "could not store the document, please try again later"
		render()
		return
	}

	profile := &types.OrganizationProfile{
		OrgName:        input.OrgName,
		Email:          input.Email,
		Phone:          input.Phone,
		Website:        input.Website,
		RegNumber:      input.RegNumber,
		RegDocumentURL: docURL,
	}
	if err := s.orgsRepo.Create(r.Context(), userID, profile); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to store organization profile")
		fieldErrors["email"] = "could not create the account, please try again later"
		render()
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func validateEmailField(fieldErrors map[string]string, email string) {
	if email == "" {
		fieldErrors["email"] = "email is required"
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		fieldErrors["email"] = "must be a valid email address"
	}
}

func validatePasswordFields(fieldErrors map[string]string, password, confirm string) {
	if password == "" {
		fieldErrors["password"] = "password is required"
		return
	}
	if len(password) < 8 {
		fieldErrors["password"] = "password must be at least 8 characters"
		return
	}
	if password != confirm {
		fieldErrors["confirm_password"] = "passwords do not match"
	}
}
