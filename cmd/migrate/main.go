package main

import (
	"log"

	"zawadi-college/app/config"
	"zawadi-college/app/database"
)

func main() {
	config.Load()
	config.InitDB()
	defer config.GetDB().Close()

	if err := database.RunMigrations(config.GetDB()); err != nil {
		log.Fatal("Migration failed: ", err)
	}
	log.Println("Migration complete")
}
