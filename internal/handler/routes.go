package handler

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the auth and quiz endpoints on api. Trailing slashes
// are optional as long as the app keeps StrictRouting off.
func RegisterRoutes(api fiber.Router, auth *AuthHandler, quiz *QuizHandler, protected fiber.Handler) {
	api.Post("/register", auth.Register)
	api.Post("/login", auth.Login)
	api.Post("/logout", protected, auth.Logout)
	api.Post("/token/refresh", auth.Refresh)

	api.Post("/createQuiz", protected, quiz.CreateQuiz)
	api.Get("/quizzes", protected, quiz.ListQuizzes)
	api.Get("/quizzes/:id", protected, quiz.GetQuiz)
	api.Patch("/quizzes/:id", protected, quiz.UpdateQuiz)
	api.Delete("/quizzes/:id", protected, quiz.DeleteQuiz)
}
