package main

import (
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"chatrelay/backend/internal/config"
	"chatrelay/backend/internal/storage"
)

func main() {
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: rooms | history <room_id> | close <room_id>")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "rooms":
		roomIDs, err := storageSvc.GetActiveRoomIDs()
		if err != nil {
			log.Fatalf("failed to list active rooms: %v", err)
		}
		if len(roomIDs) == 0 {
			fmt.Println("No active rooms.")
			return
		}
		for _, id := range roomIDs {
			room, err := storageSvc.GetRoomByID(id)
			if err != nil {
				fmt.Printf("%s (unreadable: %v)\n", id, err)
				continue
			}
			fmt.Printf("%s members=%v started=%s\n", room.RoomID, []string(room.Members), room.StartedAt.Format("2006-01-02 15:04:05"))
		}

	case "history":
		if len(os.Args) < 3 {
			fmt.Println("Usage: admin history <room_id>")
			os.Exit(1)
		}
		history, err := storageSvc.GetChatHistory(os.Args[2], config.HistoryPageSize)
		if err != nil {
			log.Fatalf("failed to load history: %v", err)
		}
		for _, msg := range history {
			fmt.Printf("[%s] %s %s: %s\n", msg.SentAt.Format("15:04:05"), msg.Kind, msg.SenderID, msg.Content)
		}

	case "close":
		if len(os.Args) < 3 {
			fmt.Println("Usage: admin close <room_id>")
			os.Exit(1)
		}
		if err := storageSvc.CloseRoom(os.Args[2]); err != nil {
			log.Fatalf("failed to close room: %v", err)
		}
		fmt.Printf("Room %s closed.\n", os.Args[2])

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}
