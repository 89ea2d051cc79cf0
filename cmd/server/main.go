package main

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/moodtunes/moodtunes-backend/engagement"
	"github.com/moodtunes/moodtunes-backend/gamify"
	"github.com/moodtunes/moodtunes-backend/recommender"
	"github.com/moodtunes/moodtunes-backend/recommender/openai"
	"github.com/moodtunes/moodtunes-backend/recommender/spotify"
	"github.com/moodtunes/moodtunes-backend/server"
	"github.com/moodtunes/moodtunes-backend/utils"
	log "github.com/moodtunes/moodtunes-backend/utils/log"
)

func main() {
	// Missing .env is fine in deployed environments where config comes from
	// real env vars.
	_ = godotenv.Load()

	db, err := utils.ConnectDB()
	if err != nil {
		panic("fail to connect database : " + err.Error())
	}

	likes := utils.NewLikeStatusStore(
		getenvDefault("REDIS_ADDR", "localhost:6379"),
		os.Getenv("REDIS_PASSWORD"),
		0,
	)

	inference, err := openai.New()
	if err != nil {
		panic("fail to create inference client : " + err.Error())
	}
	catalog, err := spotify.New()
	if err != nil {
		panic("fail to create catalog client : " + err.Error())
	}

	store := engagement.NewStore(db, likes, gamify.NewEngine(db))
	handlers := &server.Handlers{
		Store:        store,
		Orchestrator: recommender.NewOrchestrator(inference, catalog),
	}

	r := gin.Default()
	r.Use(cors.Default())
	server.RegisterRoutes(r, db, handlers)

	port := getenvDefault("PORT", "8080")
	log.Logger.Info("moodtunes backend listening on :" + port)
	if err := r.Run(":" + port); err != nil {
		panic("server exited : " + err.Error())
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
