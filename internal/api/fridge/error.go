package fridge

import (
	"FridgeMood/pkg/response"
	"net/http"
)

var (
	ErrNoImagePart    = response.NewError(http.StatusBadRequest, "No image part")
	ErrNoSelectedFile = response.NewError(http.StatusBadRequest, "No selected file")
	ErrInvalidImage   = response.NewError(http.StatusBadRequest, "Invalid file type. Only images are allowed.")
	ErrFileTooLarge   = response.NewError(http.StatusBadRequest, "File too large")
)
