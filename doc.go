// Package book is the document model of an e-book reader for devices
// with little memory.
//
// A book (an ePub container, a plain text file or an HTML file) is
// exposed as a sequence of size-bounded chapters, each loaded into
// memory only when read. The reading state, bookmarks and per-chapter
// text encodings live in two small side files next to the book.
//
// # Opening a book
//
//	b, err := book.Open("novel.epub", book.OpenOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Close()
//
// # Chapters
//
// Sources larger than the maximum chapter size are split on byte
// boundaries by [Partition]; a split may cut a multi-byte character or a
// tag in two, which the text parsers tolerate. [Book.Chapter] clamps its
// index, so it never fails:
//
//	ch := b.CurrentChapter()
//	text, err := b.ChapterText(ch)
//
// Call [Book.UnloadChapters] to release chapter buffers under memory
// pressure; nothing is evicted automatically.
//
// # User data
//
// Given "novel.epub", the reading state is kept in "novel.alx" (see
// [SettingsRecord]) and bookmarks in "novel.alb":
//
//	<b>
//	<b c="3" p="1234">A quiet evening</b>
//	</b>
//
// Both files are optional. A missing or damaged side file never stops a
// book from opening, and [Book.SaveSettings] and [Book.SaveBookmarks]
// never return errors; failures are logged through the configured
// [log/slog] logger.
//
// # Errors
//
//   - [ErrConfiguration] – invalid partition parameters or no chapters
//   - [ErrBookFormat] – unsupported extension or unreadable book
//   - [ErrDRMProtected] – the container is DRM encrypted
//   - [ErrFormat] – malformed settings record or bookmark document
//   - [ErrRange] – reading position outside the chapter
package book
