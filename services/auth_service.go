package services

import (
	"fmt"

	"sms-relay/auth"
	"sms-relay/errors"
	"sms-relay/repositories"
)

type IAuthService interface {
	Register(name, username, password string) (Token, error)
	Login(username, password string) (Token, error)
}

type Token string

type AuthService struct {
	users  repositories.IUserRepository
	issuer *auth.TokenIssuer
}

func NewAuthService(users repositories.IUserRepository, issuer *auth.TokenIssuer) *AuthService {
	return &AuthService{users: users, issuer: issuer}
}

func (s *AuthService) Register(name, username, password string) (Token, error) {
	valReq := auth.RegisterRequest{
		Name:     name,
		Username: username,
		Password: password,
	}

	// Validate business rules before any expensive cryptographic operation.
	if err := auth.ValidateRegister(valReq); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidArgument, err)
	}

	// Hashing happens in the service layer to keep the repository unaware
	// of plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	userID, err := s.users.CreateUser(name, username, hashedPassword)
	if err != nil {
		return "", err // Propagates ErrUserAlreadyExists if the username is taken
	}

	token, err := s.issuer.Generate(userID, username)
	if err != nil {
		return "", err
	}
	return Token(token), nil
}

func (s *AuthService) Login(username, password string) (Token, error) {
	user, err := s.users.GetUserByUsername(username)
	if err != nil {
		return "", err
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil {
		return "", err
	}
	if !match {
		return "", errors.ErrInvalidCredentials
	}

	token, err := s.issuer.Generate(user.ID, user.Username)
	if err != nil {
		return "", err
	}
	return Token(token), nil
}
