package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"atelierlux/api/logger"
	"atelierlux/api/models"
	"atelierlux/api/store"
	"atelierlux/api/utils"
)

type AuthHandlers struct {
	Users    *store.UserStore
	Sessions *store.SessionStore
	Log      *logger.Logger
}

func NewAuthHandlers(users *store.UserStore, sessions *store.SessionStore, log *logger.Logger) *AuthHandlers {
	return &AuthHandlers{Users: users, Sessions: sessions, Log: log}
}

func (h *AuthHandlers) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Log.Error("failed to hash password", "email", req.Email, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	user, err := h.Users.CreateUser(c.Request.Context(), req.Email, hashedPassword)
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
			return
		}
		h.Log.Error("failed to create user", "email", req.Email, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	h.Log.Info("admin registered", "user_id", user.ID, "email", user.Email)
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user_email": user.Email})
}

// Login authenticates an admin, registers the session in Redis and sets the
// JWT cookie.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	user, err := h.Users.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.Log.Debug("login failed", "email", req.Email, "error", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(req.Password)); err != nil {
		h.Log.Debug("login failed, password mismatch", "email", req.Email)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	sessionID := uuid.New().String()
	if err := h.Sessions.Store(c.Request.Context(), sessionID, user.ID, utils.AdminSessionTTL); err != nil {
		h.Log.Error("failed to register session", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open session"})
		return
	}

	tokenString, err := utils.GenerateJWT(user, sessionID)
	if err != nil {
		h.Log.Error("failed to generate JWT", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return
	}

	c.SetCookie(
		"jwt_token",
		tokenString,
		int(utils.AdminSessionTTL/time.Second),
		"/",
		"",
		false,
		true,
	)

	h.Log.Info("admin logged in", "user_id", user.ID, "email", user.Email)
	c.JSON(http.StatusOK, gin.H{
		"message":    "Login successful",
		"user_email": user.Email,
	})
}

// Logout revokes the Redis session (when the token is still readable) and
// clears the cookie either way.
func (h *AuthHandlers) Logout(c *gin.Context) {
	if tokenString, err := c.Cookie("jwt_token"); err == nil {
		if claims, verr := utils.ValidateJWT(tokenString); verr == nil {
			if derr := h.Sessions.Delete(c.Request.Context(), claims.SessionID); derr != nil {
				h.Log.Warn("failed to revoke session", "session_id", claims.SessionID, "error", derr)
			}
		}
	}

	c.SetCookie(
		"jwt_token",
		"",
		-1,
		"/",
		"",
		false,
		true,
	)

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
