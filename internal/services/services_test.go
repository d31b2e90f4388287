package services

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strconv"
	"testing"
	"time"

	"kvartal/internal/db"
	"kvartal/internal/db/dbtest"
	"kvartal/internal/models"
	"kvartal/internal/storage"
	"kvartal/internal/thread"
	"kvartal/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type ServicesTestSuite struct {
	suite.Suite
	alice *models.User
	bob   *models.User
}

func TestServicesSuite(t *testing.T) {
	suite.Run(t, new(ServicesTestSuite))
}

// SetupTest gives every test a fresh database and media dir.
func (s *ServicesTestSuite) SetupTest() {
	_, err := dbtest.OpenMemory()
	s.Require().NoError(err)
	Media = storage.NewImageStore(s.T().TempDir(), 1<<20)
	utils.GetCache().Purge()

	s.alice = s.mustRegister("alice")
	s.bob = s.mustRegister("bob")
}

func (s *ServicesTestSuite) mustRegister(name string) *models.User {
	u, err := Register(name, "password123", "password123")
	s.Require().NoError(err)
	return u
}

func (s *ServicesTestSuite) mustPost(author *models.User, title string) *models.Post {
	p, err := CreatePost(author.ID, PostInput{Title: title, Content: "body of " + title})
	s.Require().NoError(err)
	return p
}

func (s *ServicesTestSuite) mustComment(author *models.User, post *models.Post, parent *models.Comment) *models.Comment {
	var pid *uint
	if parent != nil {
		pid = &parent.ID
	}
	c, err := AddComment(author.ID, post.ID, "text", pid)
	s.Require().NoError(err)
	return c
}

func pngUpload(t *testing.T, filename string, w, h int) *multipart.FileHeader {
	t.Helper()
	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, w, h))))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	hdr.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(img.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// --- accounts ---

func (s *ServicesTestSuite) TestRegisterValidation() {
	_, err := Register("carol", "password123", "password124")
	s.ErrorIs(err, ErrPasswordMismatch)

	_, err = Register("carol", "short", "short")
	s.ErrorIs(err, ErrPasswordTooShort)

	_, err = Register("alice", "password123", "password123")
	s.ErrorIs(err, ErrUsernameTaken)

	_, err = Register("  ", "password123", "password123")
	s.ErrorIs(err, ErrInvalidInput)
}

func (s *ServicesTestSuite) TestAuthenticate() {
	u, err := Authenticate("alice", "password123")
	s.Require().NoError(err)
	s.Equal(s.alice.ID, u.ID)
	s.NotEqual("password123", u.Password)

	_, err = Authenticate("alice", "wrong-password")
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = Authenticate("nobody", "password123")
	s.ErrorIs(err, ErrInvalidCredentials)
}

// --- posts ---

func (s *ServicesTestSuite) TestCreatePostValidation() {
	_, err := CreatePost(s.alice.ID, PostInput{Title: " ", Content: "x"})
	s.ErrorIs(err, ErrTitleRequired)

	_, err = CreatePost(s.alice.ID, PostInput{Title: "t", Content: "  "})
	s.ErrorIs(err, ErrEmptyContent)
}

func (s *ServicesTestSuite) TestListPostsNewestFirstWithCounts() {
	first := s.mustPost(s.alice, "first")
	second := s.mustPost(s.bob, "second")
	db.DB.Model(first).Update("created_at", time.Now().Add(-time.Hour))

	_, err := ToggleLike(s.bob.ID, first.ID)
	s.Require().NoError(err)
	_, err = ToggleLike(s.alice.ID, first.ID)
	s.Require().NoError(err)
	s.mustComment(s.bob, first, nil)

	posts, err := ListPosts()
	s.Require().NoError(err)
	s.Require().Len(posts, 2)
	s.Equal(second.ID, posts[0].ID)
	s.Equal(first.ID, posts[1].ID)
	s.Equal("alice", posts[1].User.Username)
	s.Equal(2, posts[1].LikeCount)
	s.Equal(1, posts[1].CommentCount)
	s.Equal(0, posts[0].LikeCount)

	mine, err := ListUserPosts(s.bob.ID)
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal(second.ID, mine[0].ID)
}

func (s *ServicesTestSuite) TestUpdatePostOnlyAuthor() {
	post := s.mustPost(s.alice, "mine")

	_, err := UpdatePost(s.bob.ID, post.ID, PostInput{Title: "stolen", Content: "x"})
	s.ErrorIs(err, ErrNotAuthor)

	updated, err := UpdatePost(s.alice.ID, post.ID, PostInput{Title: "renamed", Content: "new"})
	s.Require().NoError(err)
	s.Equal("renamed", updated.Title)

	_, err = UpdatePost(s.alice.ID, 9999, PostInput{Title: "x", Content: "x"})
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *ServicesTestSuite) TestUpdatePostReplacesImage() {
	post, err := CreatePost(s.alice.ID, PostInput{Title: "pic", Content: "x", Image: pngUpload(s.T(), "a.png", 10, 10)})
	s.Require().NoError(err)
	oldPath := Media.Path(post.Image)
	s.True(fileExists(oldPath))

	updated, err := UpdatePost(s.alice.ID, post.ID, PostInput{Title: "pic", Content: "x", Image: pngUpload(s.T(), "b.png", 10, 10)})
	s.Require().NoError(err)
	s.NotEqual(post.Image, updated.Image)
	s.False(fileExists(oldPath))
	s.True(fileExists(Media.Path(updated.Image)))

	cleared, err := UpdatePost(s.alice.ID, post.ID, PostInput{Title: "pic", Content: "x", ClearImage: true})
	s.Require().NoError(err)
	s.Empty(cleared.Image)
	s.False(fileExists(Media.Path(updated.Image)))
}

func (s *ServicesTestSuite) TestDeletePostCascades() {
	post, err := CreatePost(s.alice.ID, PostInput{Title: "doomed", Content: "x", Image: pngUpload(s.T(), "a.png", 10, 10)})
	s.Require().NoError(err)
	root := s.mustComment(s.bob, post, nil)
	s.mustComment(s.alice, post, root)
	_, err = ToggleCommentLike(s.alice.ID, root.ID)
	s.Require().NoError(err)
	_, err = ToggleLike(s.bob.ID, post.ID)
	s.Require().NoError(err)
	_, err = ToggleFavorite(s.bob.ID, post.ID)
	s.Require().NoError(err)
	other := s.mustPost(s.bob, "survivor")
	s.mustComment(s.alice, other, nil)

	s.ErrorIs(DeletePost(s.bob.ID, post.ID), ErrNotAuthor)
	s.Require().NoError(DeletePost(s.alice.ID, post.ID))

	var n int64
	db.DB.Model(&models.Post{}).Count(&n)
	s.EqualValues(1, n)
	db.DB.Model(&models.Comment{}).Count(&n)
	s.EqualValues(1, n)
	db.DB.Model(&models.CommentLike{}).Count(&n)
	s.EqualValues(0, n)
	db.DB.Model(&models.Like{}).Count(&n)
	s.EqualValues(0, n)
	db.DB.Model(&models.Favorite{}).Count(&n)
	s.EqualValues(0, n)
	s.False(fileExists(Media.Path(post.Image)))
}

// --- likes & favorites ---

func (s *ServicesTestSuite) TestToggleLike() {
	post := s.mustPost(s.alice, "p")

	liked, err := ToggleLike(s.bob.ID, post.ID)
	s.Require().NoError(err)
	s.True(liked)
	s.True(UserLiked(s.bob.ID, post.ID))

	liked, err = ToggleLike(s.bob.ID, post.ID)
	s.Require().NoError(err)
	s.False(liked)
	s.False(UserLiked(s.bob.ID, post.ID))

	_, err = ToggleLike(s.bob.ID, 9999)
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *ServicesTestSuite) TestToggleFavorite() {
	post := s.mustPost(s.alice, "p")
	older := s.mustPost(s.alice, "older")

	_, err := ToggleFavorite(s.alice.ID, post.ID)
	s.ErrorIs(err, ErrOwnPost)

	on, err := ToggleFavorite(s.bob.ID, older.ID)
	s.Require().NoError(err)
	s.True(on)
	on, err = ToggleFavorite(s.bob.ID, post.ID)
	s.Require().NoError(err)
	s.True(on)
	db.DB.Model(&models.Favorite{}).Where("post_id = ?", older.ID).Update("created_at", time.Now().Add(-time.Hour))

	favs, err := ListFavorites(s.bob.ID)
	s.Require().NoError(err)
	s.Require().Len(favs, 2)
	s.Equal(post.ID, favs[0].PostID)
	s.Equal("alice", favs[0].Post.User.Username)
	s.Equal(older.ID, favs[1].PostID)

	on, err = ToggleFavorite(s.bob.ID, post.ID)
	s.Require().NoError(err)
	s.False(on)
	s.False(UserFavorited(s.bob.ID, post.ID))
	s.True(UserFavorited(s.bob.ID, older.ID))
}

// --- comments ---

func (s *ServicesTestSuite) TestAddCommentParentMustShareThePost() {
	post := s.mustPost(s.alice, "p")
	other := s.mustPost(s.alice, "q")
	foreign := s.mustComment(s.bob, other, nil)

	_, err := AddComment(s.bob.ID, post.ID, "reply", &foreign.ID)
	s.ErrorIs(err, ErrInvalidParent)

	missing := uint(9999)
	_, err = AddComment(s.bob.ID, post.ID, "reply", &missing)
	s.ErrorIs(err, ErrInvalidParent)

	_, err = AddComment(s.bob.ID, post.ID, "   ", nil)
	s.ErrorIs(err, ErrEmptyContent)

	_, err = AddComment(s.bob.ID, 9999, "hi", nil)
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *ServicesTestSuite) TestPostThread() {
	post := s.mustPost(s.alice, "p")
	c1 := s.mustComment(s.alice, post, nil)
	c3 := s.mustComment(s.bob, post, nil)
	c2 := s.mustComment(s.bob, post, c1)
	c4 := s.mustComment(s.alice, post, c2)

	liked, err := ToggleCommentLike(s.bob.ID, c2.ID)
	s.Require().NoError(err)
	s.True(liked)

	forest, err := PostThread(post.ID, s.bob.ID)
	s.Require().NoError(err)
	s.Require().Len(forest, 2)
	s.Equal(c1.ID, forest[0].Comment.ID)
	s.Equal(c3.ID, forest[1].Comment.ID)
	s.Require().Len(forest[0].Replies, 1)

	reply := forest[0].Replies[0]
	s.Equal(c2.ID, reply.Comment.ID)
	s.Equal("bob", reply.Comment.User.Username)
	s.Equal(1, reply.Comment.LikeCount)
	s.True(reply.Comment.Liked)
	s.Require().Len(reply.Replies, 1)
	s.Equal(c4.ID, reply.Replies[0].Comment.ID)
	s.False(reply.Replies[0].Comment.Liked)

	anon, err := PostThread(post.ID, 0)
	s.Require().NoError(err)
	s.False(anon[0].Replies[0].Comment.Liked)
	s.Equal(4, thread.Count(anon))
}

func (s *ServicesTestSuite) TestDeleteCommentRemovesSubtree() {
	post := s.mustPost(s.alice, "p")
	c1 := s.mustComment(s.bob, post, nil)
	c2 := s.mustComment(s.alice, post, c1)
	s.mustComment(s.bob, post, c2)
	keep := s.mustComment(s.alice, post, nil)
	_, err := ToggleCommentLike(s.alice.ID, c2.ID)
	s.Require().NoError(err)

	_, err = DeleteComment(s.alice.ID, c1.ID)
	s.ErrorIs(err, ErrNotAuthor)

	postID, err := DeleteComment(s.bob.ID, c1.ID)
	s.Require().NoError(err)
	s.Equal(post.ID, postID)

	comments, err := ListComments(post.ID, 0)
	s.Require().NoError(err)
	s.Require().Len(comments, 1)
	s.Equal(keep.ID, comments[0].ID)

	var n int64
	db.DB.Model(&models.CommentLike{}).Count(&n)
	s.EqualValues(0, n)
}

// --- messaging ---

func (s *ServicesTestSuite) TestContactsOrderAndUnread() {
	carol := s.mustRegister("carol")
	base := time.Now().Add(-time.Hour)
	send := func(from, to *models.User, at time.Duration) {
		m := models.Message{SenderID: from.ID, RecipientID: to.ID, Content: "hi", Timestamp: base.Add(at)}
		s.Require().NoError(db.DB.Create(&m).Error)
	}
	send(s.bob, s.alice, 1*time.Minute)
	send(s.bob, s.alice, 2*time.Minute)
	send(s.alice, carol, 5*time.Minute)
	send(s.alice, s.bob, 3*time.Minute)

	contacts, err := Contacts(s.alice.ID)
	s.Require().NoError(err)
	s.Require().Len(contacts, 2)
	s.Equal("carol", contacts[0].User.Username)
	s.Equal(0, contacts[0].UnreadCount)
	s.Equal("bob", contacts[1].User.Username)
	s.Equal(2, contacts[1].UnreadCount)
	s.EqualValues(2, UnreadCount(s.alice.ID))

	none, err := Contacts(s.mustRegister("dave").ID)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *ServicesTestSuite) TestConversationMarksRead() {
	_, err := SendMessage(s.bob.ID, s.alice.ID, "hello", "first")
	s.Require().NoError(err)
	_, err = SendMessage(s.alice.ID, s.bob.ID, "", "second")
	s.Require().NoError(err)
	s.EqualValues(1, UnreadCount(s.alice.ID))
	s.EqualValues(1, UnreadCount(s.bob.ID))

	msgs, err := Conversation(s.alice.ID, s.bob.ID)
	s.Require().NoError(err)
	s.Require().Len(msgs, 2)
	s.Equal("first", msgs[0].Content)
	s.Equal("bob", msgs[0].Sender.Username)
	s.Equal("second", msgs[1].Content)

	s.EqualValues(0, UnreadCount(s.alice.ID))
	s.EqualValues(1, UnreadCount(s.bob.ID), "only messages to the reader are marked")

	_, err = Conversation(s.alice.ID, s.mustRegister("carol").ID)
	s.ErrorIs(err, ErrNotContact)
}

func (s *ServicesTestSuite) TestConversationReportsStoreErrors() {
	_, err := SendMessage(s.bob.ID, s.alice.ID, "", "hi")
	s.Require().NoError(err)
	s.Require().NoError(db.DB.Migrator().DropTable(&models.Message{}))

	_, err = Conversation(s.alice.ID, s.bob.ID)
	s.Require().Error(err)
	s.NotErrorIs(err, ErrNotContact)

	ok, err := IsContact(s.alice.ID, s.bob.ID)
	s.Error(err)
	s.False(ok)
	s.EqualValues(0, UnreadCount(s.alice.ID))
}

func (s *ServicesTestSuite) TestSendMessageValidation() {
	_, err := SendMessage(s.alice.ID, s.bob.ID, "", " ")
	s.ErrorIs(err, ErrEmptyContent)

	_, err = SendMessage(s.alice.ID, 9999, "", "hi")
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

// --- profiles ---

func (s *ServicesTestSuite) TestProfile() {
	p, err := GetOrCreateProfile(s.alice.ID)
	s.Require().NoError(err)
	again, err := GetOrCreateProfile(s.alice.ID)
	s.Require().NoError(err)
	s.Equal(p.ID, again.ID)

	updated, err := UpdateProfile(s.alice.ID, ProfileInput{
		FirstName: "Alice",
		LastName:  "Liddell",
		Bio:       "curious",
		BirthDate: "1852-05-04",
		Avatar:    pngUpload(s.T(), "me.png", 900, 600),
	})
	s.Require().NoError(err)
	s.Equal("Alice Liddell", updated.FullName())
	s.Require().NotNil(updated.BirthDate)
	s.Equal(1852, updated.BirthDate.Year())

	img, err := os.Open(Media.Path(updated.Avatar))
	s.Require().NoError(err)
	cfg, _, err := image.DecodeConfig(img)
	img.Close()
	s.Require().NoError(err)
	s.Equal(300, cfg.Width)
	s.Equal(200, cfg.Height)

	first := updated.Avatar
	updated, err = UpdateProfile(s.alice.ID, ProfileInput{Avatar: pngUpload(s.T(), "new.png", 50, 50)})
	s.Require().NoError(err)
	s.False(fileExists(Media.Path(first)))
	s.Nil(updated.BirthDate)

	_, err = UpdateProfile(s.alice.ID, ProfileInput{BirthDate: "04.05.1852"})
	s.ErrorIs(err, ErrInvalidInput)
	_, err = UpdateProfile(s.alice.ID, ProfileInput{FirstName: "abcdefghijklmnopqrstuvwxyzabcde"})
	s.ErrorIs(err, ErrInvalidInput)
}

// --- catalog ---

func (s *ServicesTestSuite) TestCatalog() {
	books, err := CreateCategory("Books", "paper")
	s.Require().NoError(err)
	toys, err := CreateCategory("Toys", "")
	s.Require().NoError(err)

	_, err = CreateProduct(ProductInput{Name: "Novel", CategoryID: books.ID, Price: decimal.RequireFromString("12.50")})
	s.Require().NoError(err)
	_, err = CreateProduct(ProductInput{Name: "Ball", CategoryID: toys.ID, Price: decimal.RequireFromString("3")})
	s.Require().NoError(err)
	_, err = CreateProduct(ProductInput{Name: "Ghost", CategoryID: 9999, Price: decimal.Zero})
	s.ErrorIs(err, gorm.ErrRecordNotFound)
	_, err = CreateProduct(ProductInput{Name: "Debt", CategoryID: toys.ID, Price: decimal.NewFromInt(-1)})
	s.ErrorIs(err, ErrInvalidInput)

	all, err := ListProducts(nil)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("Books", all[0].Category.Name)
	s.True(all[0].Price.Equal(decimal.RequireFromString("12.5")))

	onlyToys, err := ListProducts(&toys.ID)
	s.Require().NoError(err)
	s.Require().Len(onlyToys, 1)
	s.Equal("Ball", onlyToys[0].Name)

	// a new product invalidates the cached listing
	_, err = CreateProduct(ProductInput{Name: "Kite", CategoryID: toys.ID, Price: decimal.NewFromInt(7)})
	s.Require().NoError(err)
	onlyToys, err = ListProducts(&toys.ID)
	s.Require().NoError(err)
	s.Len(onlyToys, 2)

	cats, err := ListCategories()
	s.Require().NoError(err)
	s.Require().Len(cats, 2)
	s.Equal("Books", cats[0].Name)
}

func (s *ServicesTestSuite) TestCreateProductWithImage() {
	cat, err := CreateCategory("Posters", "")
	s.Require().NoError(err)
	src := s.T().TempDir() + "/poster.png"
	f, err := os.Create(src)
	s.Require().NoError(err)
	s.Require().NoError(png.Encode(f, image.NewRGBA(image.Rect(0, 0, 1000, 2000))))
	f.Close()

	p, err := CreateProduct(ProductInput{Name: "Poster", CategoryID: cat.ID, Price: decimal.NewFromInt(5), ImagePath: src})
	s.Require().NoError(err)
	s.Contains(p.Image, storage.ProductImagesDir+"/")

	img, err := os.Open(Media.Path(p.Image))
	s.Require().NoError(err)
	cfg, _, err := image.DecodeConfig(img)
	img.Close()
	s.Require().NoError(err)
	s.Equal(400, cfg.Width)
	s.Equal(800, cfg.Height)
}

// --- captcha ---

func TestCaptcha(t *testing.T) {
	svc := NewSeededCaptchaService(7)
	for i := 0; i < 50; i++ {
		q, answer := svc.GenerateMathProblem()
		assert.NotEmpty(t, q)
		assert.GreaterOrEqual(t, answer, 0)
		assert.True(t, CheckAnswer(answer, " "+strconv.Itoa(answer)+" "))
		assert.False(t, CheckAnswer(answer, strconv.Itoa(answer+1)))
	}
	assert.False(t, CheckAnswer(nil, "0"))
	assert.False(t, CheckAnswer(3, "three"))
}
