package accounts

import (
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
)

// ErrContactNotFound is returned when a contact id does not exist under the
// requesting account. Foreign-owned contacts land here too.
var ErrContactNotFound = errors.New("contact not found", errors.CategoryNotFound).
	WithTextCode("contact_not_found").
	WithCode(errors.CodeNotFound)

// ContactsController serves the per-account address book. Every route is
// bearer-protected and scoped to the authenticated account.
type ContactsController struct {
	Logger Logger
	Repo   RepositoryManager
}

func NewContactsController(repo RepositoryManager) *ContactsController {
	return &ContactsController{
		Logger: defLogger{},
		Repo:   repo,
	}
}

func (a *ContactsController) WithLogger(logger Logger) *ContactsController {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// RegisterRoutes mounts the contacts API behind the protect handler.
func (a *ContactsController) RegisterRoutes(app fiber.Router, protect fiber.Handler) {
	grp := app.Group("/api/contacts", protect)

	grp.Get("/", a.List)
	grp.Post("/", a.Create)
	grp.Get("/:contactId", a.Get)
	grp.Put("/:contactId", a.Update)
	grp.Patch("/:contactId/favorite", a.SetFavorite)
	grp.Delete("/:contactId", a.Delete)
}

// ContactPayload is the contact create/update body
type ContactPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Favorite bool   `json:"favorite"`
}

// Validate will validate the payload
func (r ContactPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.Phone, validation.By(ValidatePhoneNumber)),
	)
}

// ValidatePhoneNumber accepts empty values and otherwise requires a number
// phonenumbers can parse and validate. Bare national numbers parse against
// the US region.
func ValidatePhoneNumber(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	parsed, err := phonenumbers.Parse(s, "US")
	if err != nil {
		return err
	}

	if !phonenumbers.IsValidNumber(parsed) {
		return errors.New("invalid phone number", errors.CategoryValidation)
	}

	return nil
}

// FavoritePayload is the favorite toggle body
type FavoritePayload struct {
	Favorite *bool `json:"favorite"`
}

// Validate will validate the payload
func (r FavoritePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Favorite, validation.NotNil),
	)
}

func (a *ContactsController) List(c *fiber.Ctx) error {
	user, err := UserFromLocals(c)
	if err != nil {
		return err
	}

	var favorite *bool
	if raw := c.Query("favorite"); raw != "" {
		val, err := strconv.ParseBool(raw)
		if err != nil {
			return errors.Wrap(err, errors.CategoryBadInput, "favorite filter must be a boolean").
				WithCode(errors.CodeBadRequest)
		}
		favorite = &val
	}

	records, err := a.Repo.Contacts().ListByOwner(c.UserContext(), user.ID, favorite)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to list contacts")
	}

	return c.JSON(fiber.Map{
		"contacts": records,
	})
}

func (a *ContactsController) Create(c *fiber.Ctx) error {
	user, err := UserFromLocals(c)
	if err != nil {
		return err
	}

	payload := new(ContactPayload)
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "failed to parse contact body").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, err.Error()).
			WithCode(errors.CodeBadRequest)
	}

	record := &Contact{
		Name:     payload.Name,
		Email:    payload.Email,
		Phone:    payload.Phone,
		Favorite: payload.Favorite,
	}

	created, err := a.Repo.Contacts().CreateOwned(c.UserContext(), user.ID, record)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to create contact")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"contact": created,
	})
}

func (a *ContactsController) Get(c *fiber.Ctx) error {
	user, err := UserFromLocals(c)
	if err != nil {
		return err
	}

	id, err := contactIDParam(c)
	if err != nil {
		return err
	}

	record, err := a.Repo.Contacts().GetByOwner(c.UserContext(), user.ID, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return ErrContactNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to load contact")
	}

	return c.JSON(fiber.Map{
		"contact": record,
	})
}

func (a *ContactsController) Update(c *fiber.Ctx) error {
	user, err := UserFromLocals(c)
	if err != nil {
		return err
	}

	id, err := contactIDParam(c)
	if err != nil {
		return err
	}

	payload := new(ContactPayload)
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "failed to parse contact body").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, err.Error()).
			WithCode(errors.CodeBadRequest)
	}

	record := &Contact{
		Name:     payload.Name,
		Email:    payload.Email,
		Phone:    payload.Phone,
		Favorite: payload.Favorite,
	}
	record.ID = id

	updated, err := a.Repo.Contacts().UpdateByOwner(c.UserContext(), user.ID, record)
	if err != nil {
		if errors.IsNotFound(err) {
			return ErrContactNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to update contact")
	}

	return c.JSON(fiber.Map{
		"contact": updated,
	})
}

func (a *ContactsController) SetFavorite(c *fiber.Ctx) error {
	user, err := UserFromLocals(c)
	if err != nil {
		return err
	}

	id, err := contactIDParam(c)
	if err != nil {
		return err
	}

	payload := new(FavoritePayload)
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "failed to parse favorite body").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "favorite field is required").
			WithCode(errors.CodeBadRequest)
	}

	updated, err := a.Repo.Contacts().SetFavorite(c.UserContext(), user.ID, id, *payload.Favorite)
	if err != nil {
		if errors.IsNotFound(err) {
			return ErrContactNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to update favorite flag")
	}

	return c.JSON(fiber.Map{
		"contact": updated,
	})
}

func (a *ContactsController) Delete(c *fiber.Ctx) error {
	user, err := UserFromLocals(c)
	if err != nil {
		return err
	}

	id, err := contactIDParam(c)
	if err != nil {
		return err
	}

	if err := a.Repo.Contacts().DeleteByOwner(c.UserContext(), user.ID, id); err != nil {
		if errors.IsNotFound(err) {
			return ErrContactNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete contact")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func contactIDParam(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("contactId"))
	if err != nil {
		return uuid.Nil, errors.New("contact id must be a uuid", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}
	return id, nil
}
