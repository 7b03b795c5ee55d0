package nodescraper

import "fmt"

// scraperScript is the puppeteer instruction script the runner hands to the
// node process. It prints progress lines plus one JSON result object to
// stdout; the runner recovers the object with a brace scan, so the script
// avoids brace characters in its log lines.
const scraperScript = `const puppeteer = require('puppeteer');

const USERNAME = %q;
const COUNT = %d;

async function run() {
    let browser;
    try {
        console.log('starting scrape for @' + USERNAME);

        browser = await puppeteer.launch({
            headless: true,
            args: [
                '--no-sandbox',
                '--disable-setuid-sandbox',
                '--disable-blink-features=AutomationControlled',
                '--disable-web-security',
                '--no-first-run',
                '--no-default-browser-check'
            ]
        });

        const page = await browser.newPage();
        await page.setUserAgent('Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36');
        await page.setViewport({ width: 1366, height: 768 });
        await page.evaluateOnNewDocument(() => {
            Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
        });

        console.log('navigating to profile');
        await page.goto('https://www.instagram.com/' + USERNAME + '/', {
            waitUntil: 'domcontentloaded',
            timeout: 30000
        });
        await new Promise(resolve => setTimeout(resolve, 3000));

        const selectors = ['article', 'main article', '[role="main"] article', 'section article'];
        let postsLoaded = false;
        for (const selector of selectors) {
            try {
                await page.waitForSelector(selector, { timeout: 5000 });
                console.log('found posts using selector ' + selector);
                postsLoaded = true;
                break;
            } catch (e) {
                console.log('selector failed: ' + selector);
            }
        }
        if (!postsLoaded) {
            await page.evaluate(() => window.scrollTo(0, 500));
            await new Promise(resolve => setTimeout(resolve, 2000));
        }

        const posts = await page.evaluate((count, username) => {
            const links = document.querySelectorAll('article a[href*="/p/"]');
            const out = [];
            links.forEach((link, index) => {
                if (index >= count) return;
                const img = link.querySelector('img');
                if (img) {
                    const shortcode = link.href.split('/p/')[1] ? link.href.split('/p/')[1].split('/')[0] : 'unknown';
                    out.push({
                        id: shortcode,
                        shortcode: shortcode,
                        display_url: img.src,
                        thumbnail_src: img.src,
                        description: img.alt || '',
                        likes: 0,
                        comments: 0,
                        owner: username
                    });
                }
            });
            return out;
        }, COUNT, USERNAME);

        console.log('scrape finished, posts: ' + posts.length);
        console.log(JSON.stringify({
            method: 'puppeteer',
            username: USERNAME,
            total_found: posts.length,
            processed_count: posts.length,
            posts: posts
        }));
    } catch (error) {
        console.error('error: ' + error.message);
        process.exit(1);
    } finally {
        if (browser) {
            await browser.close();
        }
    }
}

run();
`

func renderScript(username string, count int) string {
	return fmt.Sprintf(scraperScript, username, count)
}
