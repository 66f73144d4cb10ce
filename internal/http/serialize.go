package httpx

import "github.com/iguajardo/serenity-api/internal/domain"

// The client predates this service and speaks Spanish field names; the
// marshal helpers below keep that wire contract. Password hashes are never
// serialized.

func marshalUser(u *domain.User) map[string]any {
	out := map[string]any{
		"id":              u.ID,
		"nombre_usuario":  u.Username,
		"email":           u.Email,
		"confirmed_email": u.ConfirmedEmail,
	}
	if u.Profile != nil {
		out["perfil"] = marshalProfile(u.Profile)
	}
	return out
}

func marshalProfile(p *domain.Profile) map[string]any {
	notas := make([]map[string]any, 0, len(p.Notes))
	for _, n := range p.Notes {
		notas = append(notas, marshalNote(n))
	}
	calendario := make([]map[string]any, 0, len(p.Calendar))
	for _, e := range p.Calendar {
		calendario = append(calendario, map[string]any{
			"fecha":    e.Date,
			"category": e.Category,
		})
	}
	return map[string]any{
		"nombre":     p.Name,
		"avatar":     p.Avatar,
		"notas":      notas,
		"calendario": calendario,
	}
}

func marshalNote(n domain.Note) map[string]any {
	return map[string]any{
		"id":        n.ID,
		"titulo":    n.Title,
		"contenido": n.Content,
		"categoria": n.Category,
	}
}

func marshalUsers(users []domain.User) []map[string]any {
	out := make([]map[string]any, 0, len(users))
	for i := range users {
		out = append(out, marshalUser(&users[i]))
	}
	return out
}
