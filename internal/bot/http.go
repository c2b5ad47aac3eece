package bot

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"tarotbot/internal/tarot"
)

// HTTPServer handles HTTP requests for the Mini App
type HTTPServer struct {
	bot         *Bot
	webhookMode bool // If false (polling mode), skip authentication for easier local dev
}

// NewHTTPServer creates a new HTTP server for the Mini App
func NewHTTPServer(bot *Bot, webhookMode bool) *HTTPServer {
	return &HTTPServer{
		bot:         bot,
		webhookMode: webhookMode,
	}
}

// RegisterRoutes registers Mini App routes on the provided mux
func (hs *HTTPServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/profile", hs.handleProfile)
	mux.HandleFunc("/api/draws", hs.handleDraws)
}

// validateTelegramInitData validates the Telegram Mini App initData
func (hs *HTTPServer) validateTelegramInitData(initData string) (int64, error) {
	if initData == "" {
		return 0, fmt.Errorf("missing initData")
	}

	values, err := url.ParseQuery(initData)
	if err != nil {
		return 0, fmt.Errorf("invalid initData format: %w", err)
	}

	hash := values.Get("hash")
	if hash == "" {
		return 0, fmt.Errorf("missing hash in initData")
	}
	values.Del("hash")

	// Create data-check-string
	var keys []string
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var dataCheckString strings.Builder
	for i, k := range keys {
		if i > 0 {
			dataCheckString.WriteByte('\n')
		}
		dataCheckString.WriteString(k)
		dataCheckString.WriteByte('=')
		dataCheckString.WriteString(values.Get(k))
	}

	// Create secret key
	secretKey := hmac.New(sha256.New, []byte("WebAppData"))
	secretKey.Write([]byte(hs.bot.api.Token))
	secret := secretKey.Sum(nil)

	// Calculate hash
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(dataCheckString.String()))
	calculatedHash := hex.EncodeToString(h.Sum(nil))

	if calculatedHash != hash {
		return 0, fmt.Errorf("invalid hash")
	}

	// Check auth_date (data should be recent, within 24 hours)
	authDateStr := values.Get("auth_date")
	if authDateStr == "" {
		return 0, fmt.Errorf("missing auth_date")
	}

	var authDate int64
	fmt.Sscanf(authDateStr, "%d", &authDate)
	if time.Now().Unix()-authDate > 86400 {
		return 0, fmt.Errorf("initData is too old")
	}

	userStr := values.Get("user")
	if userStr == "" {
		return 0, fmt.Errorf("missing user data")
	}

	var userData struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal([]byte(userStr), &userData); err != nil {
		return 0, fmt.Errorf("invalid user data: %w", err)
	}

	if !hs.bot.isAllowed(userData.ID) {
		return 0, fmt.Errorf("user not allowed")
	}

	return userData.ID, nil
}

// authenticate resolves the requesting user. In polling mode (local dev) the
// initData check is skipped and the user id is taken from the query string.
func (hs *HTTPServer) authenticate(r *http.Request) (int64, error) {
	if !hs.webhookMode {
		idStr := r.URL.Query().Get("user_id")
		if idStr == "" {
			return 0, fmt.Errorf("missing user_id query parameter")
		}
		userID, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid user_id: %w", err)
		}
		return userID, nil
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "tma ") {
		return 0, fmt.Errorf("missing or invalid authorization header")
	}
	return hs.validateTelegramInitData(strings.TrimPrefix(authHeader, "tma "))
}

// authMiddleware resolves the user and passes it to the handler.
func (hs *HTTPServer) authMiddleware(next func(w http.ResponseWriter, r *http.Request, userID int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := hs.authenticate(r)
		if err != nil {
			hs.bot.logger.Warn("Failed to authenticate request",
				zap.Error(err),
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("path", r.URL.Path),
			)
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next(w, r, userID)
	}
}

// ProfileResponse is the Mini App view of a user profile.
type ProfileResponse struct {
	UserID       int64  `json:"user_id"`
	Name         string `json:"name"`
	Age          int    `json:"age"`
	Gender       string `json:"gender"`
	FreeTokens   int64  `json:"free_tokens"`
	PaidTokens   int64  `json:"paid_tokens"`
	Subscription int    `json:"subscription"`
}

// handleProfile returns the requesting user's profile
func (hs *HTTPServer) handleProfile(w http.ResponseWriter, r *http.Request) {
	hs.authMiddleware(func(w http.ResponseWriter, r *http.Request, userID int64) {
		if r.Method != http.MethodGet {
			http.Error(w, `{"error":"Method not allowed"}`, http.StatusMethodNotAllowed)
			return
		}

		user, err := hs.bot.users.GetUser(r.Context(), userID)
		if err != nil {
			hs.bot.logger.Error("Failed to fetch profile", zap.Int64("user_id", userID), zap.Error(err))
			http.Error(w, `{"error":"Failed to fetch profile"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ProfileResponse{
			UserID:       user.UserID,
			Name:         user.Name,
			Age:          user.Age,
			Gender:       user.Gender,
			FreeTokens:   user.FreeTokens,
			PaidTokens:   user.PaidTokens,
			Subscription: user.Subscription,
		})
	})(w, r)
}

// DrawResponse is the Mini App view of one revealed draw.
type DrawResponse struct {
	Day      string `json:"day"`
	Question string `json:"question"`
	CardID   int    `json:"card_id"`
	CardName string `json:"card_name"`
	Verdict  string `json:"verdict"`
}

// handleDraws returns the requesting user's most recent draws
func (hs *HTTPServer) handleDraws(w http.ResponseWriter, r *http.Request) {
	hs.authMiddleware(func(w http.ResponseWriter, r *http.Request, userID int64) {
		if r.Method != http.MethodGet {
			http.Error(w, `{"error":"Method not allowed"}`, http.StatusMethodNotAllowed)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		draws, err := hs.bot.history.GetLastDraws(ctx, userID, historyPageSize)
		if err != nil {
			hs.bot.logger.Error("Failed to fetch draws", zap.Int64("user_id", userID), zap.Error(err))
			http.Error(w, `{"error":"Failed to fetch draws"}`, http.StatusInternalServerError)
			return
		}

		out := make([]DrawResponse, 0, len(draws))
		for _, draw := range draws {
			out = append(out, DrawResponse{
				Day:      draw.Day,
				Question: draw.Question,
				CardID:   draw.CardID,
				CardName: tarot.CardByID(draw.CardID).Name,
				Verdict:  draw.Verdict,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	})(w, r)
}
