package accounts

import (
	"fmt"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/google/uuid"
)

// AuthController serves the account lifecycle API as JSON over fiber.
type AuthController struct {
	Debug   bool
	Logger  Logger
	Repo    RepositoryManager
	Auther  *Auther
	Codes   CodeIssuer
	Mailer  Mailer
	Config  Config
	Avatars AvatarProcessor
}

func NewAuthController(repo RepositoryManager, auther *Auther, codes CodeIssuer, mailer Mailer, avatars AvatarProcessor, cfg Config) *AuthController {
	return &AuthController{
		Logger:  defLogger{},
		Repo:    repo,
		Auther:  auther,
		Codes:   codes,
		Mailer:  mailer,
		Config:  cfg,
		Avatars: avatars,
	}
}

func (a *AuthController) WithLogger(logger Logger) *AuthController {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// RegisterRoutes mounts the auth API. The protect handler guards the
// session-bound endpoints.
func (a *AuthController) RegisterRoutes(app fiber.Router, protect fiber.Handler) {
	grp := app.Group("/api/auth")

	grp.Post("/register", a.Register)
	grp.Get("/verify/:verificationCode", a.Verify)
	grp.Post("/verify", a.ResendVerification)
	grp.Post("/login", a.Login)

	grp.Get("/current", protect, a.Current)
	grp.Post("/logout", protect, a.Logout)
	grp.Patch("/subscription", protect, a.UpdateSubscription)
	grp.Patch("/avatars", protect, a.UpdateAvatar)
}

// NewErrorHandler builds the fiber error handler for the API. Category errors
// carry their own HTTP status; anything else reads as an internal failure.
func NewErrorHandler(logger Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = defLogger{}
	}

	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"message": fiberErr.Message,
			})
		}

		var richErr *errors.Error
		if !errors.As(err, &richErr) {
			richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
				WithCode(errors.CodeInternal)
		}

		status := richErr.Code
		if status == 0 {
			switch richErr.Category {
			case errors.CategoryAuth, errors.CategoryAuthz:
				status = fiber.StatusUnauthorized
			case errors.CategoryValidation, errors.CategoryBadInput:
				status = fiber.StatusBadRequest
			case errors.CategoryNotFound:
				status = fiber.StatusNotFound
			case errors.CategoryConflict:
				status = fiber.StatusConflict
			default:
				status = fiber.StatusInternalServerError
			}
		}

		logger.Info(
			"request error",
			"path", c.Path(),
			"category", richErr.Category,
			"message", richErr.Message,
		)

		body := fiber.Map{
			"message": richErr.Message,
		}
		if richErr.TextCode != "" {
			body["text_code"] = richErr.TextCode
		}

		return c.Status(status).JSON(body)
	}
}

// UserRecord is the public view of an account. Responses carry it instead of
// the model so internal fields (ids, avatar references, verification state,
// timestamps) stay off the wire.
type UserRecord struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Subscription string `json:"subscription"`
}

func NewUserRecord(user *User) UserRecord {
	return UserRecord{
		Name:         user.Name,
		Email:        user.Email,
		Subscription: string(user.Subscription),
	}
}

// RegisterPayload is the signup body
type RegisterPayload struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Subscription string `json:"subscription"`
}

// Validate will validate the payload
func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
		validation.Field(&r.Subscription, validation.In(
			string(SubscriptionStarter),
			string(SubscriptionPro),
			string(SubscriptionBusiness),
		)),
	)
}

func (a *AuthController) Register(c *fiber.Ctx) error {
	payload := new(RegisterPayload)

	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "failed to parse registration body").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, err.Error()).
			WithCode(errors.CodeBadRequest)
	}

	var user *User
	deliveryFailed := false

	msg := RegisterAccountMessage{
		Name:         payload.Name,
		Email:        payload.Email,
		Password:     payload.Password,
		Subscription: Subscription(payload.Subscription),
		OnCreated: func(u *User) {
			user = u
		},
		OnDeliveryError: func(err error) {
			deliveryFailed = true
		},
	}

	handler := NewRegisterAccountHandler(a.Repo, a.Codes, a.Mailer, a.Config).
		WithLogger(a.Logger)

	if err := handler.Execute(c.UserContext(), msg); err != nil {
		return err
	}

	if a.Debug {
		fmt.Println(print.MaybePrettyJSON(user))
	}

	body := fiber.Map{
		"user": NewUserRecord(user),
	}
	if deliveryFailed {
		body["warning"] = "verification email could not be delivered"
	}

	return c.Status(fiber.StatusCreated).JSON(body)
}

func (a *AuthController) Verify(c *fiber.Ctx) error {
	code := c.Params("verificationCode")

	msg := VerifyEmailMessage{Code: code}
	handler := NewVerifyEmailHandler(a.Repo).WithLogger(a.Logger)

	if err := handler.Execute(c.UserContext(), msg); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Verification successful",
	})
}

// ResendPayload is the verification resend body
type ResendPayload struct {
	Email string `json:"email"`
}

// Validate will validate the payload
func (r ResendPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) ResendVerification(c *fiber.Ctx) error {
	payload := new(ResendPayload)

	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "failed to parse resend body").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, err.Error()).
			WithCode(errors.CodeBadRequest)
	}

	msg := ResendVerificationMessage{Email: payload.Email}
	handler := NewResendVerificationHandler(a.Repo, a.Mailer, a.Config).
		WithLogger(a.Logger)

	if err := handler.Execute(c.UserContext(), msg); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Verification email sent",
	})
}

// LoginPayload is the login body
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will validate the payload
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

func (a *AuthController) Login(c *fiber.Ctx) error {
	payload := new(LoginPayload)

	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "failed to parse login body").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, err.Error()).
			WithCode(errors.CodeBadRequest)
	}

	token, err := a.Auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		a.Logger.Info("login rejected", "email", payload.Email)
		return err
	}

	user, err := a.Repo.Users().GetByEmail(c.UserContext(), payload.Email)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to load account after login")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  NewUserRecord(user),
	})
}

func (a *AuthController) Current(c *fiber.Ctx) error {
	user, err := UserFromLocals(c)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"user": NewUserRecord(user),
	})
}

func (a *AuthController) Logout(c *fiber.Ctx) error {
	user, err := UserFromLocals(c)
	if err != nil {
		return err
	}

	if err := a.Auther.Logout(c.UserContext(), user.ID.String()); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// SubscriptionPayload is the plan change body
type SubscriptionPayload struct {
	Subscription string `json:"subscription"`
}

// Validate will validate the payload
func (r SubscriptionPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Subscription, validation.Required, validation.In(
			string(SubscriptionStarter),
			string(SubscriptionPro),
			string(SubscriptionBusiness),
		)),
	)
}

func (a *AuthController) UpdateSubscription(c *fiber.Ctx) error {
	user, err := UserFromLocals(c)
	if err != nil {
		return err
	}

	payload := new(SubscriptionPayload)
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "failed to parse subscription body").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, err.Error()).
			WithCode(errors.CodeBadRequest)
	}

	updated, err := a.Repo.Users().UpdateSubscription(c.UserContext(), user.ID, Subscription(payload.Subscription))
	if err != nil {
		if errors.IsNotFound(err) {
			return ErrUserNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to update subscription")
	}

	return c.JSON(fiber.Map{
		"user": NewUserRecord(updated),
	})
}

func (a *AuthController) UpdateAvatar(c *fiber.Ctx) error {
	user, err := UserFromLocals(c)
	if err != nil {
		return err
	}

	header, err := c.FormFile("avatar")
	if err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "avatar file is required").
			WithCode(errors.CodeBadRequest)
	}

	tempPath := filepath.Join(os.TempDir(), uuid.NewString())
	if err := c.SaveFile(header, tempPath); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to stage avatar upload")
	}

	avatarPath, err := a.Avatars.Ingest(user.ID.String(), tempPath, header.Filename)
	if err != nil {
		return err
	}

	updated, err := a.Repo.Users().UpdateAvatar(c.UserContext(), user.ID, avatarPath)
	if err != nil {
		if errors.IsNotFound(err) {
			return ErrUserNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to store avatar reference")
	}

	return c.JSON(fiber.Map{
		"avatarURL": updated.AvatarURL,
	})
}
