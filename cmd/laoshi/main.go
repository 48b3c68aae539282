// Laoshi is a Chinese-teacher Discord bot. Messages in the configured channel
// spawn a reply thread; the conversation continues there with per-thread
// history persisted under the storage directory.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/bwmarrin/discordgo"
	"github.com/discordpod/discordpod"
)

const instructions = `You are an expert Chinese teacher.

Your responses should primarily be in English, as the learners are not yet fluent; only practice content etc. should be in Chinese.

You are operating as a Discord bot; your message should thus fit the context in terms of tone. An example message is:

USER:
    > hi, sorry it might sound stupid but how do i say like see u again?
ASSISTANT (you):
    > no worries, we're here to learn \:) "see you again" in Chinese is "再见" (zài jiàn)

Respond in a polite and extremely concise tone. Do not add extra sentences deviating from the user's question. For each,
continuing the above example, do not include follow-up suggestions such as "Do you want to learn how to write 再见？".

Politely steer the conversation back to Chinese if the user deviates.`

func main() {
	channelID := flag.String("channel", "", "trigger channel ID (required)")
	model := flag.String("model", "deepseek/deepseek-v3.2-exp", "model name")
	baseURL := flag.String("base-url", "https://openrouter.ai/api/v1", "OpenAI-compatible API base URL")
	storageDir := flag.String("storage", "threads.db", "conversation storage directory")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to environment variables")
	}

	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		log.Fatal("DISCORD_TOKEN environment variable is not set")
	}
	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENROUTER_API_KEY environment variable is not set")
	}
	if *channelID == "" {
		log.Fatal("--channel flag is required")
	}

	store, err := discordpod.NewFileStore(*storageDir)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}

	agent := discordpod.NewLLMAgent[struct{}](
		discordpod.NewClient(apiKey, *baseURL),
		*model,
		instructions,
	)

	pod, err := discordpod.NewPod(agent, struct{}{}, discordpod.Options{
		TriggerChannelID: *channelID,
		Store:            store,
	})
	if err != nil {
		log.Fatalf("Failed to create pod: %v", err)
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		log.Fatalf("Failed to create Discord session: %v", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	pod.Register(session)

	if err := session.Open(); err != nil {
		log.Fatalf("Failed to connect to Discord: %v", err)
	}
	defer session.Close()

	log.Println("Bot is running, press Ctrl+C to exit")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
}
