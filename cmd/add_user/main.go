package main

import (
	"flag"
	"log"

	"zawadi-college/app/config"
	"zawadi-college/app/database"
	"zawadi-college/app/models"
)

// Creates an account from the command line, e.g. the first admin of a fresh
// institution.
func main() {
	institution := flag.String("institution", "", "institution id (tenant)")
	email := flag.String("email", "", "login email")
	password := flag.String("password", "", "initial password")
	firstName := flag.String("first", "", "first name")
	lastName := flag.String("last", "", "last name")
	role := flag.String("role", string(models.RoleTeacher), "role: admin, teacher or staff")
	flag.Parse()

	if *institution == "" || *email == "" || *password == "" {
		log.Fatal("institution, email and password are required")
	}

	config.Load()
	config.InitDB()
	defer config.GetDB().Close()

	user, err := database.CreateUser(config.GetDB(), *institution, *email, *password, *firstName, *lastName, models.Role(*role))
	if err != nil {
		log.Fatal("Failed to create user: ", err)
	}
	log.Printf("Created %s user %s (%s)", user.Role, user.Email, user.ID)
}
