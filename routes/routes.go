package routes

import (
	"net/http"
	"strings"
	"time"

	"mountify/config"
	"mountify/handlers"
	"mountify/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterConfiguratorRoutes sets up the endpoints for the booking
// configuration session.
func RegisterConfiguratorRoutes(r *gin.Engine, ch *handlers.ConfiguratorHandler) {
	session := r.Group("/api/configurator")
	{
		session.POST("/session", ch.CreateSession)
		session.GET("/session/:sessionID", ch.GetSession)
		session.PUT("/session/:sessionID/items/init", ch.InitializeItems)
		session.POST("/session/:sessionID/items", ch.AddItem)
		session.PUT("/session/:sessionID/items/:index", ch.UpdateItem)
		session.DELETE("/session/:sessionID/items/:index", ch.RemoveItem)
		session.PUT("/session/:sessionID/current-item", ch.SetCurrentItem)
		session.PUT("/session/:sessionID/steps", ch.MarkStep)
		session.PUT("/session/:sessionID/contact", ch.UpdateContact)
		session.POST("/session/:sessionID/referral", ch.ApplyReferral)
		session.POST("/session/:sessionID/submit", ch.Submit)
		session.DELETE("/session/:sessionID", ch.ResetSession)
	}
}

// RegisterReferralRoutes sets up the referral validation and ledger endpoints.
func RegisterReferralRoutes(r *gin.Engine, rh *handlers.ReferralHandler) {
	referral := r.Group("/api/referral")
	{
		referral.POST("/validate", rh.ValidateCode)
		referral.POST("/usage", rh.RecordUsage)
		referral.POST("/codes", rh.CreateCode)
		referral.GET("/codes/:code", rh.GetCode)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, ch *handlers.ConfiguratorHandler, rh *handlers.ReferralHandler) {
	origins := strings.Split(config.AppConfig.AllowedCORSOrigins, ",")
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterConfiguratorRoutes(r, ch)
	RegisterReferralRoutes(r, rh)
	RegisterHealthRoute(r)
}
