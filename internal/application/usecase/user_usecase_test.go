package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	userdom "storefront/internal/domain/user"
)

type fakeUserRepo struct {
	users      map[string]*userdom.User // key: email + "#" + provider
	avatarURLs map[string]string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:      map[string]*userdom.User{},
		avatarURLs: map[string]string{},
	}
}

func userKey(email string, provider userdom.Provider) string {
	return email + "#" + string(provider)
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*userdom.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, userdom.ErrNotFound
}

func (r *fakeUserRepo) GetByEmailAndProvider(ctx context.Context, email string, provider userdom.Provider) (*userdom.User, error) {
	u, ok := r.users[userKey(email, provider)]
	if !ok {
		return nil, userdom.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) Create(ctx context.Context, u *userdom.User) error {
	key := userKey(u.Email, u.Provider)
	if _, ok := r.users[key]; ok {
		return userdom.ErrAlreadyExists
	}
	r.users[key] = u
	return nil
}

func (r *fakeUserRepo) UpdateAvatarURL(ctx context.Context, email, avatarURL string) error {
	found := false
	for _, u := range r.users {
		if u.Email == email {
			u.AvatarURL = avatarURL
			found = true
		}
	}
	if !found {
		return userdom.ErrNotFound
	}
	r.avatarURLs[email] = avatarURL
	return nil
}

type recordingMailer struct {
	sent []string
	err  error
}

func (m *recordingMailer) SendWelcome(ctx context.Context, email, name string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

type fakeAvatarStore struct{ puts int }

func (s *fakeAvatarStore) Put(ctx context.Context, email, contentType string, data []byte) (string, error) {
	s.puts++
	return "https://storage.example.com/avatars/" + email, nil
}

func emailSignUp(email string) SignUpInput {
	return SignUpInput{
		Name:     "Shopper",
		Email:    email,
		Password: "s3cret!",
		Provider: "email",
	}
}

func TestUserUsecase_SignUp_EmailProvider(t *testing.T) {
	repo := newFakeUserRepo()
	mailer := &recordingMailer{}
	uc := NewUserUsecase(repo, mailer, nil, nil)

	u, err := uc.SignUp(context.Background(), emailSignUp("a@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)
	assert.Equal(t, userdom.ProviderEmail, u.Provider)
	assert.Empty(t, u.GoogleID)

	// stored hash verifies against the raw password
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret!")))

	assert.Equal(t, []string{"a@example.com"}, mailer.sent)
}

func TestUserUsecase_SignUp_GoogleProvider(t *testing.T) {
	uc := NewUserUsecase(newFakeUserRepo(), nil, nil, nil)

	u, err := uc.SignUp(context.Background(), SignUpInput{
		Name:     "Shopper",
		Email:    "g@example.com",
		Provider: "google",
		GoogleID: "google-oauth2|12345",
	})
	require.NoError(t, err)
	assert.Equal(t, userdom.ProviderGoogle, u.Provider)
	assert.Empty(t, u.PasswordHash)
}

func TestUserUsecase_SignUp_MissingCredential(t *testing.T) {
	uc := NewUserUsecase(newFakeUserRepo(), nil, nil, nil)

	in := emailSignUp("a@example.com")
	in.Password = ""
	_, err := uc.SignUp(context.Background(), in)
	assert.ErrorIs(t, err, ErrPasswordRequired)

	_, err = uc.SignUp(context.Background(), SignUpInput{
		Email:    "g@example.com",
		Provider: "google",
	})
	assert.ErrorIs(t, err, ErrGoogleIDRequired)

	_, err = uc.SignUp(context.Background(), SignUpInput{
		Email:    "x@example.com",
		Provider: "facebook",
	})
	assert.ErrorIs(t, err, userdom.ErrInvalidProvider)
}

func TestUserUsecase_SignUp_DuplicatePerProvider(t *testing.T) {
	repo := newFakeUserRepo()
	uc := NewUserUsecase(repo, nil, nil, nil)

	_, err := uc.SignUp(context.Background(), emailSignUp("a@example.com"))
	require.NoError(t, err)

	// same email, same provider: rejected
	_, err = uc.SignUp(context.Background(), emailSignUp("a@example.com"))
	assert.ErrorIs(t, err, userdom.ErrAlreadyExists)

	// same email, different provider: allowed
	_, err = uc.SignUp(context.Background(), SignUpInput{
		Email:    "a@example.com",
		Provider: "google",
		GoogleID: "google-oauth2|12345",
	})
	assert.NoError(t, err)
}

func TestUserUsecase_SignUp_MailFailureIsNotFatal(t *testing.T) {
	repo := newFakeUserRepo()
	mailer := &recordingMailer{err: errors.New("smtp down")}
	uc := NewUserUsecase(repo, mailer, nil, nil)

	u, err := uc.SignUp(context.Background(), emailSignUp("a@example.com"))
	require.NoError(t, err, "welcome mail is best-effort")
	require.NotNil(t, u)

	_, err = repo.GetByEmail(context.Background(), "a@example.com")
	assert.NoError(t, err, "account was created despite mail failure")
}

func TestUserUsecase_SetAvatar(t *testing.T) {
	repo := newFakeUserRepo()
	store := &fakeAvatarStore{}
	uc := NewUserUsecase(repo, nil, store, nil)

	_, err := uc.SignUp(context.Background(), emailSignUp("a@example.com"))
	require.NoError(t, err)

	url, err := uc.SetAvatar(context.Background(), "a@example.com", "image/png", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "https://storage.example.com/avatars/a@example.com", url)
	assert.Equal(t, 1, store.puts)
	assert.Equal(t, url, repo.avatarURLs["a@example.com"])

	// unknown account
	_, err = uc.SetAvatar(context.Background(), "nobody@example.com", "image/png", []byte{1})
	assert.ErrorIs(t, err, userdom.ErrNotFound)
	assert.Equal(t, 1, store.puts, "lookup failure must not upload")
}
