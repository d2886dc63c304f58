package shop

import "net/http"

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

// indexHTML is the whole storefront: login/signup forms plus a product and
// cart view driven by fetch calls against /api.
const indexHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Mini E-Commerce Store with Login</title>
  <style>
    body { font-family: Arial; margin: 40px; }
    h1 { color: #222; }
    .box { border: 1px solid #ccc; padding: 10px; margin: 5px; display: inline-block; }
    button { padding: 5px 10px; margin-top: 5px; }
    #loginForm, #signupForm { margin-bottom: 20px; }
  </style>
</head>
<body>
  <h1>🛍️ Mini E-Commerce Store</h1>

  <div id="auth">
    <div id="loginForm">
      <h3>Login</h3>
      <input id="loginUser" placeholder="Username">
      <input id="loginPass" placeholder="Password" type="password">
      <button onclick="login()">Login</button>
    </div>
    <div id="signupForm">
      <h3>Signup</h3>
      <input id="signupUser" placeholder="Username">
      <input id="signupPass" placeholder="Password" type="password">
      <button onclick="signup()">Signup</button>
    </div>
  </div>

  <div id="store" style="display:none;">
    <button onclick="logout()">Logout</button>
    <h2>Products</h2>
    <div id="products"></div>
    <h2>Your Cart</h2>
    <div id="cart"></div>
    <button onclick="checkout()">Checkout</button>
  </div>

<script>
let sessionId = localStorage.getItem('sessionId') || '';

async function signup() {
  const username = document.getElementById('signupUser').value;
  const password = document.getElementById('signupPass').value;
  const res = await fetch('/api/signup', {
    method: 'POST', headers: { 'Content-Type': 'application/json' },
    body: JSON.stringify({ username, password })
  });
  const data = await res.json();
  alert(data.message || data.error);
}

async function login() {
  const username = document.getElementById('loginUser').value;
  const password = document.getElementById('loginPass').value;
  const res = await fetch('/api/login', {
    method: 'POST', headers: { 'Content-Type': 'application/json' },
    body: JSON.stringify({ username, password })
  });
  const data = await res.json();
  if (data.sessionId) {
    sessionId = data.sessionId;
    localStorage.setItem('sessionId', sessionId);
    showStore();
  } else {
    alert(data.error);
  }
}

async function logout() {
  await fetch('/api/logout', { method: 'POST', headers: { 'X-Session-Id': sessionId } });
  sessionId = '';
  localStorage.removeItem('sessionId');
  document.getElementById('store').style.display = 'none';
  document.getElementById('auth').style.display = 'block';
}

async function showStore() {
  document.getElementById('auth').style.display = 'none';
  document.getElementById('store').style.display = 'block';
  await loadProducts();
  await loadCart();
}

async function loadProducts() {
  const res = await fetch('/api/products', { headers: { 'X-Session-Id': sessionId } });
  if (res.status === 403) { logout(); return; }
  const products = await res.json();
  const div = document.getElementById('products');
  div.innerHTML = products.map(function (p) {
    return '<div class="box">' +
      '<strong>' + p.name + '</strong><br>' +
      '₹' + p.price + '<br>' +
      'Stock: ' + p.stock + '<br>' +
      '<button onclick="addToCart(' + p.id + ')"' + (p.stock <= 0 ? ' disabled' : '') + '>Add to Cart</button>' +
      '</div>';
  }).join('');
}

async function loadCart() {
  const res = await fetch('/api/cart', { headers: { 'X-Session-Id': sessionId } });
  if (res.status === 403) { logout(); return; }
  const cart = await res.json();
  const div = document.getElementById('cart');
  if (cart.length === 0) div.innerHTML = '<em>Empty</em>';
  else div.innerHTML = cart.map(function (c) {
    return '<div class="box">' + c.name + ' × ' + c.qty + ' = ₹' + (c.price * c.qty) + '</div>';
  }).join('');
}

async function addToCart(id) {
  await fetch('/api/cart/add', {
    method: 'POST',
    headers: { 'Content-Type': 'application/json', 'X-Session-Id': sessionId },
    body: JSON.stringify({ productId: id })
  });
  await loadProducts();
  await loadCart();
}

async function checkout() {
  await fetch('/api/checkout', { method: 'POST', headers: { 'X-Session-Id': sessionId } });
  alert('Order placed!');
  loadProducts();
  loadCart();
}

if (sessionId) showStore();
</script>
</body>
</html>
`
