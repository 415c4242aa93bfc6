package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ale-zgn/projet-semestriel/config"
	"github.com/ale-zgn/projet-semestriel/middleware"
	"github.com/ale-zgn/projet-semestriel/models"
	"github.com/ale-zgn/projet-semestriel/services"
	"github.com/ale-zgn/projet-semestriel/utils"
	"github.com/ale-zgn/projet-semestriel/websocket"
)

const rememberMeTTL = 30 * 24 * time.Hour

// AuthController handles registration and login.
type AuthController struct {
	db       *mongo.Client
	notifier *services.Notifier
}

func NewAuthController(db *mongo.Client, notifier *services.Notifier) *AuthController {
	return &AuthController{db: db, notifier: notifier}
}

// Register creates a new account. The role defaults to "user" and is fixed
// at creation; admins are notified about every registration.
func (ac *AuthController) Register(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Validation failed",
			Errors:  utils.ValidationErrors(err),
		})
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid email format",
		})
	}
	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid phone number format",
		})
	}
	username := utils.SanitizeInput(req.Username)

	collection := config.GetCollection(ac.db, "users")

	count, err := collection.CountDocuments(ctx, bson.M{
		"$or": []bson.M{{"email": email}, {"username": username}},
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to check existing users",
		})
	}
	if count > 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "User with this email or username already exists",
		})
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to process password",
		})
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	now := time.Now()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Username:  username,
		Email:     email,
		Password:  hashedPassword,
		Role:      role,
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Success: false,
				Message: "User with this email or username already exists",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to create user",
		})
	}

	token, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to generate token",
		})
	}

	// Best-effort side effects; registration itself already succeeded.
	ac.notifier.NotifyAdmins(ctx, fmt.Sprintf("New user registered: %s", user.Username), models.LocationUser, user.ID)
	go ac.notifier.EmailAdmins(context.Background(),
		"New user registered",
		fmt.Sprintf("A new account was created for %s (%s).", user.Username, user.Email))
	ac.notifier.Broadcast(websocket.EventUsersUpdated, map[string]interface{}{
		"action": "register",
		"user":   map[string]string{"id": user.ID.Hex(), "username": user.Username},
	})

	return c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "User registered successfully",
		Data: map[string]interface{}{
			"token": token,
			"user":  user.View(),
		},
	})
}

// Login verifies credentials and issues a JWT. With rememberMe, an encrypted
// credential record is stored in Redis behind an opaque token.
func (ac *AuthController) Login(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Validation failed",
			Errors:  utils.ValidationErrors(err),
		})
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid email format",
		})
	}

	var user models.User
	err = config.GetCollection(ac.db, "users").FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Success: false,
				Message: "Invalid email or password",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to find user",
		})
	}

	if err := utils.CheckPassword(req.Password, user.Password); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Success: false,
			Message: "Invalid email or password",
		})
	}

	token, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to generate token",
		})
	}

	data := map[string]interface{}{
		"token": token,
		"user":  user.View(),
	}

	if req.RememberMe {
		rememberToken, err := utils.GenerateRememberMeToken()
		if err == nil {
			err = utils.StoreRememberedCredentials(config.GetRedisClient(), rememberToken, utils.RememberedCredentials{
				Email:     user.Email,
				UserID:    user.ID.Hex(),
				Role:      user.Role,
				ExpiresAt: time.Now().Add(rememberMeTTL),
			}, rememberMeTTL)
		}
		if err != nil {
			log.Printf("remember me token not stored: %v", err)
		} else {
			data["rememberMeToken"] = rememberToken
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Login successful",
		Data:    data,
	})
}

// RememberLogin exchanges a stored remember-me token for a fresh JWT.
func (ac *AuthController) RememberLogin(c echo.Context) error {
	var req models.RememberLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Validation failed",
			Errors:  utils.ValidationErrors(err),
		})
	}

	credentials, err := utils.RetrieveRememberedCredentials(config.GetRedisClient(), req.Token)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Success: false,
			Message: "Invalid or expired remember me token",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	userID, err := primitive.ObjectIDFromHex(credentials.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Success: false,
			Message: "Invalid or expired remember me token",
		})
	}

	var user models.User
	err = config.GetCollection(ac.db, "users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Success: false,
			Message: "Account no longer exists",
		})
	}

	token, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to generate token",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Login successful",
		Data: map[string]interface{}{
			"token": token,
			"user":  user.View(),
		},
	})
}

// Logout clears the remember-me token when one was issued. JWTs themselves
// stay valid until expiry.
func (ac *AuthController) Logout(c echo.Context) error {
	var req models.LogoutRequest
	if err := c.Bind(&req); err == nil && req.RememberMeToken != "" {
		if err := utils.RemoveRememberedCredentials(config.GetRedisClient(), req.RememberMeToken); err != nil {
			log.Printf("failed to remove remember me token: %v", err)
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Logged out successfully",
	})
}
