package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"edudel/internal/auth"
	"edudel/internal/database"
	"edudel/internal/models"
	"edudel/internal/services"
	"edudel/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	// TokenCookieName is the cookie read back by /me
	TokenCookieName = "token"
	// TokenCookieMaxAge matches the default token validity window
	TokenCookieMaxAge = 7 * 24 * time.Hour
)

// DefaultFrontendURL is where the OAuth callback sends the browser when
// FRONTEND_URL is not configured
const DefaultFrontendURL = "https://edudel-lite.vercel.app"

var (
	emailService     *services.EmailService
	emailServiceOnce sync.Once
)

// getEmailService creates the email service on first use, after the
// environment has been loaded
func getEmailService() *services.EmailService {
	emailServiceOnce.Do(func() {
		emailService = services.NewEmailService()
	})
	return emailService
}

func frontendURL() string {
	if u := os.Getenv("FRONTEND_URL"); u != "" {
		return u
	}
	return DefaultFrontendURL
}

// setTokenCookie sets the session token as an HttpOnly cookie
func setTokenCookie(c *gin.Context, token string) {
	secure := gin.Mode() != gin.DebugMode
	c.SetCookie(
		TokenCookieName,
		token,
		int(TokenCookieMaxAge.Seconds()),
		"/",
		"",
		secure,
		true, // HttpOnly
	)
}

// recordLogin appends a row to the login audit log. Best effort: a failed
// insert is logged and the login proceeds.
func recordLogin(c *gin.Context, db *gorm.DB, userID uint, method string) {
	entry := models.LoginLog{
		UserID:    userID,
		Method:    method,
		IPAddress: utils.GetRealClientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
		CreatedAt: time.Now(),
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("failed to record login for user %d: %v", userID, err)
	}
}

// GoogleLoginHandler redirects the browser to Google's consent screen
func GoogleLoginHandler(c *gin.Context) {
	c.Redirect(http.StatusTemporaryRedirect, auth.LoginURL())
}

// GoogleCallbackHandler processes the OAuth callback from Google: exchanges
// the code, fetches the profile, finds or creates the user row, and redirects
// to the frontend with a signed session token. Any failure along the way
// collapses to a single generic 500.
func GoogleCallbackHandler(c *gin.Context) {
	code := c.Query("code")

	token, err := auth.ExchangeCode(c.Request.Context(), code)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "OAuth failed", err)
		return
	}

	profile, err := auth.FetchUserInfo(c.Request.Context(), token)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "OAuth failed", err)
		return
	}

	db := database.GetDB()
	var user models.User
	err = db.Where("google_id = ?", profile.Sub).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// First login for this Google account
		user = models.User{
			GoogleID: &profile.Sub,
			Name:     profile.Name,
			Email:    profile.Email,
			Picture:  profile.Picture,
		}
		if err := db.Create(&user).Error; err != nil {
			handleError(c, http.StatusInternalServerError, "OAuth failed", err)
			return
		}
	} else if err != nil {
		handleError(c, http.StatusInternalServerError, "OAuth failed", err)
		return
	}
	// Existing rows keep their stored profile; fresher fields from Google are
	// not written back.

	sessionToken, err := auth.GenerateToken(&user)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "OAuth failed", err)
		return
	}

	recordLogin(c, db, user.ID, models.LoginMethodGoogle)
	setTokenCookie(c, sessionToken)

	redirect := fmt.Sprintf("%s/auth/success?token=%s", frontendURL(), url.QueryEscape(sessionToken))
	c.Redirect(http.StatusFound, redirect)
}

// SignupHandler handles manual registration with name, email and password
func SignupHandler(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "All fields are required", err)
		return
	}

	db := database.GetDB()

	// Non-atomic existence check; concurrent signups with the same email can
	// still race past it.
	var existing models.User
	err := db.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		handleError(c, http.StatusConflict, "User already exists",
			fmt.Errorf("signup attempted for existing email %s", req.Email))
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		handleError(c, http.StatusInternalServerError, "Signup failed", err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Signup failed", err)
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
	}
	if err := db.Create(&user).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Signup failed", err)
		return
	}

	token, err := auth.GenerateToken(&user)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Signup failed", err)
		return
	}

	recordLogin(c, db, user.ID, models.LoginMethodPassword)
	setTokenCookie(c, token)
	getEmailService().SendWelcomeEmail(user.Email, user.Name)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Signup completed",
		"token":   token,
		"user":    user,
	})
}

// LoginHandler handles email/password authentication
func LoginHandler(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Email and password are required", err)
		return
	}

	db := database.GetDB()
	var user models.User
	if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			handleError(c, http.StatusBadRequest, "User not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Server error", err)
		return
	}

	if !auth.CheckPassword(req.Password, user.Password) {
		handleError(c, http.StatusBadRequest, "Invalid password",
			fmt.Errorf("password verification failed for %s", req.Email))
		return
	}

	token, err := auth.GenerateToken(&user)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Server error", err)
		return
	}

	recordLogin(c, db, user.ID, models.LoginMethodPassword)
	setTokenCookie(c, token)

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user.Public(),
	})
}

// MeHandler returns the claims of the current session token
func MeHandler(c *gin.Context) {
	tokenString, err := c.Cookie(TokenCookieName)
	if err != nil {
		handleError(c, http.StatusUnauthorized, "No token", err)
		return
	}

	claims, err := auth.ValidateToken(tokenString)
	if err != nil {
		// Expired, tampered and malformed tokens all land here
		handleError(c, http.StatusUnauthorized, "Invalid token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      claims.UserID,
		"email":   claims.Email,
		"name":    claims.Name,
		"picture": claims.Picture,
	})
}
