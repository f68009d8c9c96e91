package i18n

var ptBR = map[Code]string{
	CodeNotFound:                "O registro solicitado não foi encontrado.",
	CodeStorageFailure:          "Serviço temporariamente indisponível. Tente novamente.",
	CodeUserNotFound:            "Usuário não encontrado.",
	CodeDuplicateEmail:          "Já existe uma conta com este e-mail.",
	CodeInvalidCredentials:      "E-mail ou senha inválidos.",
	CodeUserInvalidEmail:        "Informe um endereço de e-mail válido.",
	CodeUserInvalidPassword:     "A senha deve ter entre {{.Min}} e {{.Max}} caracteres.",
	CodeUserInvalidRole:         "Papel desconhecido.",
	CodeSessionNotFound:         "Entre para continuar.",
	CodeSessionExpired:          "Sua sessão expirou. Entre novamente.",
	CodeInvalidTTL:              "A duração da sessão deve ser positiva.",
	CodeTokenInvalid:            "Entre para continuar.",
	CodeEmojiNotFound:           "Este emoji não é suportado.",
	CodeDuplicateEmoji:          "O emoji {{.Character}} já está no catálogo.",
	CodeEmojiInvalid:            "Um emoji precisa de um caractere e de um significado.",
	CodeEmptyContent:            "O feedback não pode ficar vazio.",
	CodeFeedbackAlreadyReviewed: "Feedback revisado não pode ser excluído.",
	CodeInvalidPageToken:        "O token de página não é válido.",
	CodeUnauthorized:            "Você não tem permissão para isso.",
}
