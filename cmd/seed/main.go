package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/psicoasis/oasis-backend/internal/content"
	"github.com/psicoasis/oasis-backend/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.Migrate(dsn); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	seedCtx := context.Background()

	patientIDs, err := seedPatients(seedCtx, pool, 200)
	if err != nil {
		log.Fatalf("seed patients: %v", err)
	}
	therapistIDs, authorIDs, err := seedTherapists(seedCtx, pool, 40)
	if err != nil {
		log.Fatalf("seed therapists: %v", err)
	}
	if err := seedPosts(seedCtx, pool, authorIDs, 60); err != nil {
		log.Fatalf("seed posts: %v", err)
	}
	if err := seedSessions(seedCtx, pool, patientIDs, therapistIDs, 500); err != nil {
		log.Fatalf("seed sessions: %v", err)
	}

	log.Println("seed complete")
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d patients", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		name := gofakeit.Name()
		email := fmt.Sprintf("paciente%d@%s", i, gofakeit.DomainName())

		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, email, name, role, created_at, updated_at)
			VALUES ($1, $2, $3, 'USER', now(), now())
		`, id, email, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("patients seeded")
	return ids, nil
}

func seedTherapists(ctx context.Context, pool *pgxpool.Pool, count int) (all, blogAuthors []uuid.UUID, err error) {
	log.Printf("seeding %d therapists", count)

	specialties := []string{
		"Superdotação",
		"Dupla excepcionalidade",
		"Ansiedade",
		"Depressão",
		"Terapia cognitivo-comportamental",
		"Orientação familiar",
		"Neuropsicologia",
		"Psicologia infantil",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		id := uuid.New()
		name := gofakeit.Name()
		email := fmt.Sprintf("profissional%d@%s", i, gofakeit.DomainName())
		license := fmt.Sprintf("CRP %02d/%06d", gofakeit.Number(1, 24), gofakeit.Number(100000, 999999))
		bio := gofakeit.Paragraph(1, 3, 12, " ")

		specs := []string{
			specialties[gofakeit.Number(0, len(specialties)-1)],
			specialties[gofakeit.Number(0, len(specialties)-1)],
		}

		// Most seeded therapists are approved; a quarter of those may post
		approved := gofakeit.Number(0, 9) < 8
		canPostBlog := approved && gofakeit.Number(0, 3) == 0

		_, err := tx.Exec(ctx, `
			INSERT INTO therapists (
				id, email, name, license, bio, specialties,
				approved, can_post_blog, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		`, id, email, name, license, bio, specs, approved, canPostBlog)
		if err != nil {
			return nil, nil, err
		}

		all = append(all, id)
		if canPostBlog {
			blogAuthors = append(blogAuthors, id)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	log.Println("therapists seeded")
	return all, blogAuthors, nil
}

func seedPosts(ctx context.Context, pool *pgxpool.Pool, authorIDs []uuid.UUID, count int) error {
	if len(authorIDs) == 0 {
		log.Println("no blog-authorized therapists, skipping posts")
		return nil
	}

	log.Printf("seeding %d posts", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	blogID := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO blogs (id, title, description, created_at)
		VALUES ($1, 'Estudos do OASIS', 'Blog do OASIS da Superdotação', now())
	`, blogID)
	if err != nil {
		return err
	}

	categories := []string{"Superdotação", "Saúde mental", "Família", "Educação"}
	seen := make(map[string]int)

	for i := 0; i < count; i++ {
		title := gofakeit.Sentence(gofakeit.Number(4, 8))
		slug := content.Slugify(title)
		if n, ok := seen[slug]; ok {
			seen[slug] = n + 1
			slug = fmt.Sprintf("%s-%d", slug, n)
		} else {
			seen[slug] = 1
		}

		author := authorIDs[gofakeit.Number(0, len(authorIDs)-1)]
		category := categories[gofakeit.Number(0, len(categories)-1)]
		body := gofakeit.Paragraph(4, 5, 20, "\n\n")
		published := gofakeit.Number(0, 4) > 0

		var publishedAt *time.Time
		if published {
			t := gofakeit.DateRange(time.Now().AddDate(-1, 0, 0), time.Now())
			publishedAt = &t
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO posts (
				id, title, slug, content, category, published, published_at,
				first_published_at, author_therapist_id, blog_id, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7, $8, $9, now(), now())
		`, uuid.New(), title, slug, body, category, published, publishedAt, author, blogID)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("posts seeded")
	return nil
}

func seedSessions(ctx context.Context, pool *pgxpool.Pool, patientIDs, therapistIDs []uuid.UUID, count int) error {
	if len(patientIDs) == 0 || len(therapistIDs) == 0 {
		return nil
	}

	log.Printf("seeding %d sessions", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	statuses := []string{"SCHEDULED", "COMPLETED", "COMPLETED", "CANCELLED"}

	for i := 0; i < count; i++ {
		patient := patientIDs[gofakeit.Number(0, len(patientIDs)-1)]
		therapist := therapistIDs[gofakeit.Number(0, len(therapistIDs)-1)]
		status := statuses[gofakeit.Number(0, len(statuses)-1)]

		var scheduledAt time.Time
		if status == "SCHEDULED" {
			scheduledAt = gofakeit.DateRange(time.Now(), time.Now().AddDate(0, 1, 0))
		} else {
			scheduledAt = gofakeit.DateRange(time.Now().AddDate(0, -6, 0), time.Now())
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO sessions (id, user_id, therapist_id, status, scheduled_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
		`, uuid.New(), patient, therapist, status, scheduledAt)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("sessions seeded")
	return nil
}
