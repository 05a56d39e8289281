// Command banksim runs a small simulated bank back office used by the
// agent-review flow: a compliance policy endpoint and a customer-info
// directory with a handful of known customers.
package main

import (
	"log"
	"os"

	"loanreview-backend/banksim"
	"loanreview-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	port := os.Getenv("BANK_API_PORT")
	if port == "" {
		port = "9009"
	}

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	r.POST("/check_compliance", checkCompliance)
	r.GET("/customer_info/:name", customerInfo)

	log.Printf("Bank simulator starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start bank simulator:", err)
	}
}

func checkCompliance(c *gin.Context) {
	var app models.Application
	if err := c.ShouldBindJSON(&app); err != nil {
		c.JSON(400, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	result := banksim.EvaluateCompliance(&app)
	c.JSON(200, result)
}

func customerInfo(c *gin.Context) {
	name := c.Param("name")
	profile := banksim.LookupCustomer(name)
	c.JSON(200, profile)
}
