package services

import (
	"fmt"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// ProfileUpdate carries the self-service profile fields. Blank fields are left unchanged.
type ProfileUpdate struct {
	Password string `json:"password" validate:"omitempty,min=6"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// Redacted hides the new password from audit logs.
func (p ProfileUpdate) Redacted() any {
	return map[string]string{"email": p.Email, "password": "***"}
}

// UserEdit carries the administrator-editable user fields.
type UserEdit struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Role     string `json:"role" validate:"required,oneof=USER ADMIN OWNER"`
}

// UserService owns user profiles and the cart embedded in each user.
type UserService struct {
	userRepo    repositories.UserRepository
	productRepo repositories.ProductRepository
	validate    *validator.Validate
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, productRepo repositories.ProductRepository) *UserService {
	return &UserService{
		userRepo:    userRepo,
		productRepo: productRepo,
		validate:    apperr.NewValidator(),
	}
}

// GetUser loads the authoritative user record, cart included. Users are
// always looked up by ID since usernames can be changed by staff.
func (s *UserService) GetUser(userID string) (*models.User, error) {
	return s.userRepo.GetByID(userID)
}

// GetAllUsers lists every account.
func (s *UserService) GetAllUsers() ([]models.User, error) {
	return s.userRepo.GetAll()
}

// GetCart returns the products in the user's cart.
func (s *UserService) GetCart(userID string) ([]models.Product, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	return user.CartProducts(), nil
}

// AddToCart puts one more unit of a product into the user's cart.
func (s *UserService) AddToCart(userID, productID string) (*models.User, error) {
	if _, err := s.productRepo.GetByID(productID); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.AddCartItem(user.ID, productID); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(userID)
}

// RemoveFromCart takes one unit of a product out of the user's cart.
func (s *UserService) RemoveFromCart(userID, productID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.RemoveCartItem(user.ID, productID); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(userID)
}

// UpdateProfile changes the caller's password and/or email.
func (s *UserService) UpdateProfile(userID string, update ProfileUpdate) (*models.User, error) {
	if err := apperr.FromValidator(s.validate.Struct(update)); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if update.Email != "" {
		user.Email = strings.TrimSpace(update.Email)
	}
	if update.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(update.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = string(hashed)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// EditUser lets staff rename a user and change their role.
func (s *UserService) EditUser(id string, edit UserEdit) (*models.User, error) {
	if err := apperr.FromValidator(s.validate.Struct(edit)); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	user.Username = edit.Username
	user.Role = models.Role(edit.Role)
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
