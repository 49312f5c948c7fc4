package service

import "errors"

var (
	ErrEmailTaken         = errors.New("email ya registrado")
	ErrRegistrationTaken  = errors.New("matrícula ya registrada")
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	ErrUserInactive       = errors.New("usuario inactivo o suspendido")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrInvalidUserState   = errors.New("estado de usuario inválido")
	ErrForbidden          = errors.New("no tiene permisos para esta operación")

	ErrPreferenceExists   = errors.New("el usuario ya tiene preferencias")
	ErrPreferenceNotFound = errors.New("preferencias no encontradas")
	ErrLevelNotFound      = errors.New("nivel no encontrado")
	ErrLevelInUse         = errors.New("el nivel está asignado a preferencias de usuarios")

	ErrBookNotFound     = errors.New("libro no encontrado")
	ErrReadingExists    = errors.New("la lectura ya existe")
	ErrReadingNotFound  = errors.New("lectura no encontrada")
	ErrPagesExceeded    = errors.New("páginas leídas mayor al total del libro")
	ErrInvalidReadState = errors.New("estado de lectura inválido")

	ErrDuplicateName = errors.New("ya existe un registro con ese nombre")
	ErrNoFields      = errors.New("no hay campos para actualizar")
)
